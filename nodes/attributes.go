package nodes

// Attributes is the uniform attribute bag declared on an attribute line:
// positional arguments, named arguments, tags and subtype.
type Attributes struct {
	Args    []string
	Kwargs  map[string]string
	Tags    []string
	Subtype string
}

// NewAttributes builds an attribute bag, removing duplicated tags.
func NewAttributes(args []string, kwargs map[string]string, tags []string, subtype string) Attributes {
	a := Attributes{
		Args:    args,
		Kwargs:  kwargs,
		Subtype: subtype,
	}
	a.SetTags(tags)
	return a
}

// SetTags stores tags as an ordered set: the first occurrence wins.
func (a *Attributes) SetTags(tags []string) {
	if len(tags) == 0 {
		a.Tags = nil
		return
	}
	seen := make(map[string]bool, len(tags))
	result := make([]string, 0, len(tags))
	for _, tag := range tags {
		if seen[tag] {
			continue
		}
		seen[tag] = true
		result = append(result, tag)
	}
	a.Tags = result
}

// HasTag reports whether tag is one of the tags.
func (a *Attributes) HasTag(tag string) bool {
	for _, t := range a.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Kwarg returns the named argument key, or def when it is missing.
func (a *Attributes) Kwarg(key string, def string) string {
	if v, ok := a.Kwargs[key]; ok {
		return v
	}
	return def
}

// SetKwarg stores a named argument.
func (a *Attributes) SetKwarg(key string, value string) {
	if a.Kwargs == nil {
		a.Kwargs = make(map[string]string)
	}
	a.Kwargs[key] = value
}

// IsEmpty reports whether no attribute has been set.
func (a *Attributes) IsEmpty() bool {
	return len(a.Args) == 0 && len(a.Kwargs) == 0 && len(a.Tags) == 0 && a.Subtype == ""
}
