// Package geometry resolves readout channels to detector wires.
//
// Hit construction never trusts the caller for view or signal type; both
// come from a Lookup keyed by channel. ChannelMap is the implementation
// used by the CLI. It is built from a CUE description of the readout
// planes:
//
//	detector: {
//		name: "toy"
//		planes: [
//			{plane: 0, view: "U", signal: "induction", first_channel: 0, wires: 240},
//			{plane: 1, view: "V", signal: "induction", first_channel: 240, wires: 240},
//			{plane: 2, view: "Z", signal: "collection", first_channel: 480, wires: 480},
//		]
//	}
//
// Each plane owns the contiguous channel range [first_channel,
// first_channel+wires) and channel first_channel+k reads wire k.
package geometry
