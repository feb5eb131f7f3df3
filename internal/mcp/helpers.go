package mcp

import (
	"fmt"

	"stroke-mcs/internal/geography"
	"stroke-mcs/internal/patient"
	"stroke-mcs/internal/scenario"
)

// namer translates registry ids back to the keys the client used in its scenario.
type namer struct {
	reg  *geography.Registry
	keys map[geography.CenterID]string
}

func newNamer(sc *scenario.Scenario) namer {
	keys := make(map[geography.CenterID]string, len(sc.Keys))
	for key, id := range sc.Keys {
		keys[id] = key
	}
	return namer{reg: sc.Profile.Centers, keys: keys}
}

func (n namer) key(id geography.CenterID) string {
	if key, ok := n.keys[id]; ok {
		return key
	}
	return fmt.Sprintf("#%d", id)
}

func (n namer) view(s patient.Strategy) map[string]interface{} {
	v := map[string]interface{}{
		"strategy":   s,
		"label":      s.Label(n.reg),
		"center_key": n.key(s.Center),
	}
	if s.Kind == patient.KindDripAndShip {
		if c, err := n.reg.Get(s.Center); err == nil {
			if tr, ok := c.Transfer(); ok {
				v["transfer_to"] = n.key(tr.Destination)
			}
		}
	}
	return v
}
