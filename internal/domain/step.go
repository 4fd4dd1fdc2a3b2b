package domain

// Step is a position in the wizard flow. Steps are strictly ordered.
type Step string

const (
	StepWelcome           Step = "welcome"
	StepIdentity          Step = "identity"
	StepPersona           Step = "persona"
	StepLLM               Step = "llm"
	StepTools             Step = "tools"
	StepKnowledgeBases    Step = "knowledge-bases"
	StepContentGeneration Step = "content-generation"
	StepPreview           Step = "preview"
	StepComplete          Step = "complete"
)

// Steps lists every step in flow order.
var Steps = []Step{
	StepWelcome,
	StepIdentity,
	StepPersona,
	StepLLM,
	StepTools,
	StepKnowledgeBases,
	StepContentGeneration,
	StepPreview,
	StepComplete,
}

// Index returns the position of s in the flow, or -1 for an unknown step.
func (s Step) Index() int {
	for i, step := range Steps {
		if step == s {
			return i
		}
	}
	return -1
}

// Valid reports whether s is a known step.
func (s Step) Valid() bool { return s.Index() >= 0 }

// Next returns the step that follows s. The terminal step returns itself.
func (s Step) Next() Step {
	i := s.Index()
	if i < 0 || i == len(Steps)-1 {
		return s
	}
	return Steps[i+1]
}

// Before reports whether s comes strictly before other in the flow.
func (s Step) Before(other Step) bool {
	return s.Index() < other.Index()
}

// Terminal reports whether no further transitions are possible.
func (s Step) Terminal() bool { return s == StepComplete }

func (s Step) String() string { return string(s) }
