package record

// =============================================================================
// Diagrams
// =============================================================================

// Node is a stored diagram stage.
type Node struct {
	ID    Text `json:"id"`
	Label Text `json:"label"`
	Type  Text `json:"type"`
	Sub   Text `json:"sub,omitempty"`
}

// Edge is a stored diagram connection.
type Edge struct {
	From Text `json:"from"`
	To   Text `json:"to"`
}

// Diagram is one pipeline, flow, strategy or promotion workflow. Cat is
// only used by deployment strategies and promotion workflows.
type Diagram struct {
	ID          Text       `json:"id,omitempty"`
	Name        Text       `json:"name"`
	Description Text       `json:"description,omitempty"`
	Cat         Text       `json:"cat,omitempty"`
	Tags        List[Text] `json:"tags,omitempty"`
	Nodes       List[Node] `json:"nodes"`
	Edges       List[Edge] `json:"edges"`
}

// Workflow groups CI/CD pipelines.
type Workflow struct {
	ID          Text          `json:"id,omitempty"`
	Name        Text          `json:"name"`
	Description Text          `json:"description,omitempty"`
	Pipelines   List[Diagram] `json:"pipelines"`
}

// CICD is the cicd_diagrams column.
type CICD struct {
	Workflows List[Workflow] `json:"workflows"`
}

// Flows is the gitflow_diagrams and versioning_diagrams columns.
type Flows struct {
	Flows List[Diagram] `json:"flows"`
}

// Strategies is the deployment_strategies column.
type Strategies struct {
	Strategies List[Diagram] `json:"strategies"`
}

// Promotions is the promotion_workflows column.
type Promotions struct {
	Workflows List[Diagram] `json:"workflows"`
}

// =============================================================================
// Artifact registries
// =============================================================================

// Repo is a repository hosted by a registry.
type Repo struct {
	Name      Text `json:"name"`
	RepoClass Text `json:"repoClass,omitempty"`
	PkgType   Text `json:"pkgType,omitempty"`
}

// Registry is an artifact registry and its repositories.
type Registry struct {
	Name         Text       `json:"name"`
	RegistryType Text       `json:"registryType,omitempty"`
	Repos        List[Repo] `json:"repos"`
}

// Artifacts is the artifact_repos column.
type Artifacts struct {
	Registries List[Registry] `json:"registries"`
}

// =============================================================================
// Responses, pricing and planning
// =============================================================================

// Response is the answer recorded for one control.
type Response struct {
	Status Text `json:"status,omitempty"`
	Notes  Text `json:"notes,omitempty"`
}

// Phase is a share of the project timeline.
type Phase struct {
	Name       Text   `json:"name"`
	Percentage Number `json:"percentage"`
	Months     Number `json:"months"`
}

// Pricing holds the cost estimation inputs.
type Pricing struct {
	Engineers      Number      `json:"engineers"`
	Duration       Number      `json:"duration"`
	HourlyRate     Number      `json:"hourlyRate"`
	Contingency    Number      `json:"contingency"`
	Currency       Text        `json:"currency,omitempty"`
	EstimationMode Text        `json:"estimationMode,omitempty"`
	Phases         List[Phase] `json:"phases,omitempty"`
}

// Task is a Gantt chart bar. Start is a zero-based week index; nil means
// unscheduled.
type Task struct {
	ID       Text       `json:"id,omitempty"`
	Name     Text       `json:"name"`
	Category Text       `json:"category,omitempty"`
	Start    *Number    `json:"start,omitempty"`
	Duration Number     `json:"duration"`
	Deps     List[Text] `json:"deps,omitempty"`
}

// Gantt is the gantt column.
type Gantt struct {
	Tasks List[Task] `json:"tasks"`
}

// Milestone is a dated project checkpoint.
type Milestone struct {
	Name         Text `json:"name"`
	Target       Text `json:"target,omitempty"`
	Owner        Text `json:"owner,omitempty"`
	Status       Text `json:"status,omitempty"`
	Deliverables Text `json:"deliverables,omitempty"`
}

// TeamRole is a staffed role.
type TeamRole struct {
	Role             Text   `json:"role"`
	Count            Number `json:"count"`
	Responsibilities Text   `json:"responsibilities,omitempty"`
}

// RiskItem is a risk register entry. Impact is high, medium or low.
type RiskItem struct {
	Risk       Text `json:"risk"`
	Impact     Text `json:"impact,omitempty"`
	Mitigation Text `json:"mitigation,omitempty"`
}

// Workplan is the workplan column.
type Workplan struct {
	Milestones List[Milestone] `json:"milestones"`
	TeamRoles  List[TeamRole]  `json:"teamRoles"`
	RiskItems  List[RiskItem]  `json:"riskItems"`
}
