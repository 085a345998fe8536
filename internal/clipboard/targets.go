package clipboard

// target is a format a selection can be converted to.
type target int

const (
	targetList target = iota
	targetUTF8
	targetString
	targetPlain
	targetPNG
)

// targetNames are the X11 atom names of each target.
var targetNames = [...]string{
	targetList:   "TARGETS",
	targetUTF8:   "UTF8_STRING",
	targetString: "STRING",
	targetPlain:  "text/plain;charset=utf-8",
	targetPNG:    "image/png",
}

func (t target) String() string { return targetNames[t] }

// offers lists the targets c can be converted to, TARGETS first.
func (c Content) offers() []target {
	out := []target{targetList}
	if c.Text != "" {
		out = append(out, targetUTF8, targetString, targetPlain)
	}
	if len(c.PNG) > 0 {
		out = append(out, targetPNG)
	}
	return out
}

// convert returns the bytes c holds for t. TARGETS is answered by the
// selection owner, which knows the atoms.
func (c Content) convert(t target) ([]byte, bool) {
	switch t {
	case targetUTF8, targetString, targetPlain:
		return []byte(c.Text), c.Text != ""
	case targetPNG:
		return c.PNG, len(c.PNG) > 0
	}
	return nil, false
}
