package chorale

// Summer is a mix bus. Inputs are attached with ConnectGrowInputs, so
// the input port list grows with the session. Output port p carries the
// sum of every connected input whose source port is p: a stereo bus has
// two output ports, and each contributing node routes its left and right
// ports to the matching side.
type Summer struct{}

func (Summer) Process(ctx *ProcessContext) {
	for port, out := range ctx.AudioOut {
		for i := range out {
			out[i] = 0
		}
		for _, c := range ctx.Node.Desc.AudioInputs {
			if !c.Connected() || c.Port != port {
				continue
			}
			in := ctx.Graph.Node(c.Node).AudioOut(c.Port)
			for i := 0; i < ctx.NumFrames; i++ {
				out[i] += in[i]
			}
		}
	}
}
