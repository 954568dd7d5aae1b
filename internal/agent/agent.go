package agent

import "context"

// Persona is the fixed role a collaborator adopts for one stage.
type Persona struct {
	Role      string
	Goal      string
	Backstory string
}

// StageOutput carries the free-form text one stage produced, labeled with the
// role that produced it. Outputs live only for the duration of a pipeline run.
type StageOutput struct {
	Role   string
	Output string
}

// Collaborator abstracts a remote text-generation capability. Each call is
// stateless: it takes a persona, a task description, and the ordered outputs
// of any prior stages, and returns free-form text. No retries happen at this
// layer; transport errors surface to the caller unmodified.
type Collaborator interface {
	Invoke(ctx context.Context, persona Persona, task string, prior []StageOutput) (string, error)
}
