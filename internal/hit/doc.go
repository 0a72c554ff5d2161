// Package hit builds ir.Hit records.
//
// A Creator is a one-shot builder: the hit is fully constructed when the
// Creator is, nothing can modify it afterwards, and it is handed to the
// caller either by Copy (the creator keeps its hit) or by Move (the creator
// is spent and every later extraction fails with ErrExtracted).
//
//	c, err := hit.FromWire(geo, wire, params)
//	if err != nil {
//		return err
//	}
//	h, err := c.Move() // c is spent now
//
// Channel comes from the source object; view and signal type always come
// from the geometry lookup so hits stay consistent with the detector model.
package hit
