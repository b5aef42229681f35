package pattern

import "strings"

// QName represents a qualified name with namespace and local part.
type QName struct {
	Namespace string
	Local     string
}

// Name builds a QName.
func Name(namespace, local string) QName {
	return QName{Namespace: namespace, Local: local}
}

// String returns the QName in {namespace}local format, or just local if no namespace.
func (q QName) String() string {
	if q.Namespace == "" {
		return q.Local
	}
	return "{" + q.Namespace + "}" + q.Local
}

// IsZero returns true if the QName is the zero value.
func (q QName) IsZero() bool {
	return q.Namespace == "" && q.Local == ""
}

// Equal returns true if two QNames are equal.
func (q QName) Equal(other QName) bool {
	return q.Namespace == other.Namespace && q.Local == other.Local
}

// Compare orders by local name first, then namespace.
func (q QName) Compare(other QName) int {
	if c := strings.Compare(q.Local, other.Local); c != 0 {
		return c
	}
	return strings.Compare(q.Namespace, other.Namespace)
}

// ParseQName parses "{ns}local" or "local".
func ParseQName(s string) QName {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "{") {
		if ns, local, ok := strings.Cut(s[1:], "}"); ok {
			return QName{Namespace: ns, Local: local}
		}
	}
	return QName{Local: s}
}
