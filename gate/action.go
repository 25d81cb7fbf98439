package gate

// Action describes the kind of operation a user wants to perform.
type Action string

const (
	ActionView   Action = "view"
	ActionList   Action = "list"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	// ActionTransition moves a record through its status workflow.
	ActionTransition Action = "transition"
	// ActionListOwn lists only the records the caller owns.
	ActionListOwn Action = "list-own"
)
