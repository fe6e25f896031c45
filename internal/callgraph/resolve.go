package callgraph

import "github.com/dkellner/pinpoint/internal/ir"

// ResolveCallee resolves the single callee of a call site given the dynamic
// type of the receiver object. Static calls bind to the declared method and
// ignore recvType; special calls dispatch from the declaring class; virtual
// and interface calls dispatch from the receiver's class. Returns nil when
// no target exists, in which case the call site is elided from the graph.
func ResolveCallee(recvType ir.Type, site *ir.Invoke) *ir.Method {
	call := site.Call
	switch call.Kind {
	case ir.CallStatic:
		return call.Decl.DeclaredMethod(call.Subsig)
	case ir.CallSpecial:
		return ir.Dispatch(call.Decl, call.Subsig)
	case ir.CallVirtual, ir.CallInterface:
		ct, ok := recvType.(*ir.ClassType)
		if !ok {
			return nil
		}
		return ir.Dispatch(ct.Class, call.Subsig)
	default:
		return nil
	}
}
