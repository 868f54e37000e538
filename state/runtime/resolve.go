package runtime

// Resolve is the continuation of a trapped runtime. It is either a
// *ResolveCall or a *ResolveCreate, and must be resumed or discarded
// exactly once.
type Resolve interface {
	// Discard abandons the frame, the runtime can not make progress anymore
	Discard() error
	// Runtime is the suspended runtime, for inspection only
	Runtime() *Runtime
}

// ResolveCall is the continuation of a CALL family opcode
type ResolveCall struct {
	rt  *Runtime
	tok *token
	req *CallRequest
}

// Request is the call the host has to execute
func (r *ResolveCall) Request() *CallRequest {
	return r.req
}

// Resume feeds the result of the call back and runs until the next capture
func (r *ResolveCall) Resume(h Handler, res *CallResult) (*Capture, error) {
	return r.resume(h, res, true)
}

// ResumeStep feeds the result of the call back and executes one step
func (r *ResolveCall) ResumeStep(h Handler, res *CallResult) (*Capture, error) {
	return r.resume(h, res, false)
}

func (r *ResolveCall) resume(h Handler, res *CallResult, loop bool) (*Capture, error) {
	if err := consume(r.rt, r.tok); err != nil {
		return nil, err
	}

	if capture := r.rt.feedCall(r.req, res); capture != nil {
		return capture, nil
	}

	return r.rt.drive(h, loop)
}

func (r *ResolveCall) Discard() error {
	return discard(r.rt, r.tok)
}

func (r *ResolveCall) Runtime() *Runtime {
	return r.rt
}

// ResolveCreate is the continuation of CREATE and CREATE2
type ResolveCreate struct {
	rt  *Runtime
	tok *token
	req *CreateRequest
}

// Request is the creation the host has to execute
func (r *ResolveCreate) Request() *CreateRequest {
	return r.req
}

// Resume feeds the result of the creation back and runs until the next capture
func (r *ResolveCreate) Resume(h Handler, res *CreateResult) (*Capture, error) {
	return r.resume(h, res, true)
}

// ResumeStep feeds the result of the creation back and executes one step
func (r *ResolveCreate) ResumeStep(h Handler, res *CreateResult) (*Capture, error) {
	return r.resume(h, res, false)
}

func (r *ResolveCreate) resume(h Handler, res *CreateResult, loop bool) (*Capture, error) {
	if err := consume(r.rt, r.tok); err != nil {
		return nil, err
	}

	if capture := r.rt.feedCreate(res); capture != nil {
		return capture, nil
	}

	return r.rt.drive(h, loop)
}

func (r *ResolveCreate) Discard() error {
	return discard(r.rt, r.tok)
}

func (r *ResolveCreate) Runtime() *Runtime {
	return r.rt
}

// consume releases the runtime if tok is its outstanding continuation
func consume(rt *Runtime, tok *token) error {
	if rt == nil || tok == nil || rt.pending != tok {
		return ErrContinuationConsumed
	}

	rt.pending = nil

	return nil
}

func discard(rt *Runtime, tok *token) error {
	if err := consume(rt, tok); err != nil {
		return err
	}

	rt.abandoned = true

	return nil
}
