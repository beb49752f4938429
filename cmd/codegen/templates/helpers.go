package templates

// Container is a reactive view type that gets typed getters.
type Container struct {
	Name     string
	Receiver string
	KeyName  string
	KeyType  string
	Where    string
}

// Value is a type the getters assert to.
type Value struct {
	Name    string
	GoType  string
	Article string
}

func DefaultContainers() []Container {
	return []Container{
		{Name: "Object", Receiver: "o", KeyName: "key", KeyType: "string", Where: "under key"},
		{Name: "Array", Receiver: "a", KeyName: "i", KeyType: "int", Where: "at index i"},
		{Name: "Map", Receiver: "m", KeyName: "key", KeyType: "any", Where: "under key"},
	}
}

func DefaultValues() []Value {
	return []Value{
		scalar("String", "string"),
		scalar("Int", "int"),
		scalar("Int64", "int64"),
		scalar("Float64", "float64"),
		scalar("Bool", "bool"),
		view("Object"),
		view("Array"),
		view("Map"),
		view("Set"),
	}
}

func scalar(name, goType string) Value {
	return Value{Name: name, GoType: goType, Article: article(goType) + " " + goType}
}

func view(name string) Value {
	goType := "*" + name
	return Value{Name: name, GoType: goType, Article: article(name) + " " + goType}
}

func article(word string) string {
	switch word[0] {
	case 'a', 'e', 'i', 'o', 'u', 'A', 'E', 'I', 'O', 'U':
		return "an"
	}
	return "a"
}
