package playground

import (
	"fmt"
	"regexp"
)

// DialogueState is the variable collection state.
type DialogueState int

const (
	// StateIdle means the template has no placeholders; nothing to collect.
	StateIdle DialogueState = iota
	// StateCollecting means a question for the current variable is pending.
	StateCollecting
	// StateResolved means every variable has a value and the resolved
	// prompt is available.
	StateResolved
)

// Dialogue is the conversational variable-collection state machine for a
// templated prompt. It asks for one variable at a time, in extraction
// order, then substitutes every occurrence of each placeholder.
type Dialogue struct {
	template  string
	variables []string
	index     int
	values    map[string]string
	state     DialogueState
	resolved  string
}

// NewDialogue creates a dialogue for the given template. If the template
// has placeholders the dialogue starts collecting at the first one;
// otherwise it is idle.
func NewDialogue(template string) *Dialogue {
	d := &Dialogue{
		template:  template,
		variables: ExtractVariables(template),
		values:    make(map[string]string),
		state:     StateIdle,
	}
	if len(d.variables) > 0 {
		d.state = StateCollecting
	}
	return d
}

// State returns the current dialogue state.
func (d *Dialogue) State() DialogueState { return d.state }

// Collecting reports whether a variable question is pending.
func (d *Dialogue) Collecting() bool { return d.state == StateCollecting }

// CurrentVariable returns the variable currently being asked about, or ""
// when not collecting.
func (d *Dialogue) CurrentVariable() string {
	if d.state != StateCollecting {
		return ""
	}
	return d.variables[d.index]
}

// FirstQuestion returns the opening question for the first variable.
func (d *Dialogue) FirstQuestion() Entry {
	return Entry{
		Role:    RoleAI,
		Content: fmt.Sprintf("This prompt needs some information. First, what is the value for %q?", d.variables[0]),
	}
}

// Submit records value for the current variable and returns the machine's
// reply entry. Empty values are accepted and substitute as empty strings.
// The returned bool is true once all variables are filled and the dialogue
// has transitioned to resolved.
func (d *Dialogue) Submit(value string) (Entry, bool) {
	if d.state != StateCollecting {
		return Entry{}, false
	}

	d.values[d.variables[d.index]] = value

	if d.index+1 < len(d.variables) {
		d.index++
		return Entry{
			Role:    RoleAI,
			Content: fmt.Sprintf("Great. Now, what's the value for %q?", d.variables[d.index]),
		}, false
	}

	d.resolved = d.substitute()
	d.state = StateResolved
	return Entry{
		Role: RoleSystem,
		Content: fmt.Sprintf("All variables filled! Here's the final prompt. You can add more details below or just click \"Run\".\n\n---\n%s", d.resolved),
	}, true
}

// Resolved returns the fully substituted prompt, or "" before resolution.
func (d *Dialogue) Resolved() string { return d.resolved }

// substitute replaces every occurrence of each collected placeholder.
func (d *Dialogue) substitute() string {
	out := d.template
	for name, value := range d.values {
		re := regexp.MustCompile(`\{\{` + regexp.QuoteMeta(name) + `\}\}`)
		out = re.ReplaceAllLiteralString(out, value)
	}
	return out
}
