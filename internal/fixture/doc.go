// Package fixture reads YAML event fixtures and writes them into a store.
//
// A fixture holds, per event, the raw digits and wires a detector
// simulation would have produced and the measured parameters of hits a
// hit finder would have produced from them. Applying a fixture writes the
// sources, then builds every hit with the record builder and commits the
// hits through the incremental collection builder, related to the wire and
// raw digit they reference.
//
// Example:
//
//	labels:
//	  hit_relations: both
//	events:
//	  - run: 1
//	    subrun: 0
//	    event: 1
//	    raw_digits:
//	      - {channel: 22, pedestal: 400, samples: [400, 412, 431, 405]}
//	    wires:
//	      - channel: 22
//	        n_samples: 4
//	        raw_digit: 0
//	        rois:
//	          - {begin: 1, samples: [12, 31, 5]}
//	    hits:
//	      - {wire: 0, roi: 0, peak_time: 2, peak_amplitude: 31}
package fixture
