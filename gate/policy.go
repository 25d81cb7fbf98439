package gate

import "context"

// Policy adds record-level rules on top of role permissions, such as
// "customers may only view their own quotations".
type Policy interface {
	// Can is only consulted when a concrete resource is supplied.
	Can(ctx context.Context, subject Subject, action Action, resource any) bool
}

// PolicyFunc adapts a function to Policy.
type PolicyFunc func(ctx context.Context, subject Subject, action Action, resource any) bool

func (f PolicyFunc) Can(ctx context.Context, subject Subject, action Action, resource any) bool {
	return f(ctx, subject, action, resource)
}
