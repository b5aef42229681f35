package pattern

// NameClass describes the set of qualified names an Element or Attribute accepts.
type NameClass interface {
	Contains(name QName) bool
	isNameClass()
}

// SimpleName accepts exactly one qualified name.
type SimpleName struct {
	Name QName
}

// AnyName accepts every name, minus Except when set.
type AnyName struct {
	Except NameClass
}

// NsName accepts every name in Namespace, minus Except when set.
type NsName struct {
	Except    NameClass
	Namespace string
}

// NameClassChoice accepts the union of its classes.
type NameClassChoice struct {
	Classes []NameClass
}

// Simple returns a SimpleName name class.
func Simple(namespace, local string) SimpleName {
	return SimpleName{Name: QName{Namespace: namespace, Local: local}}
}

// Contains implements NameClass.
func (n SimpleName) Contains(name QName) bool { return n.Name.Equal(name) }

// Contains implements NameClass.
func (n AnyName) Contains(name QName) bool {
	return n.Except == nil || !n.Except.Contains(name)
}

// Contains implements NameClass.
func (n NsName) Contains(name QName) bool {
	if name.Namespace != n.Namespace {
		return false
	}
	return n.Except == nil || !n.Except.Contains(name)
}

// Contains implements NameClass.
func (n NameClassChoice) Contains(name QName) bool {
	for _, c := range n.Classes {
		if c != nil && c.Contains(name) {
			return true
		}
	}
	return false
}

func (SimpleName) isNameClass()      {}
func (AnyName) isNameClass()         {}
func (NsName) isNameClass()          {}
func (NameClassChoice) isNameClass() {}

// SimpleNameOf returns the single name of a SimpleName class.
// Wildcards and choices report false.
func SimpleNameOf(nc NameClass) (QName, bool) {
	if s, ok := nc.(SimpleName); ok {
		return s.Name, true
	}
	return QName{}, false
}

// ListedNames returns the names a class enumerates explicitly:
// the name of a SimpleName, or the simple members of a choice.
// Wildcards contribute nothing.
func ListedNames(nc NameClass) []QName {
	switch nc := nc.(type) {
	case SimpleName:
		return []QName{nc.Name}
	case NameClassChoice:
		var out []QName
		for _, c := range nc.Classes {
			out = append(out, ListedNames(c)...)
		}
		return out
	default:
		return nil
	}
}
