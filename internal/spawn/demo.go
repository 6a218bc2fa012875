package spawn

import "time"

// DemoDefinitions returns a small hardcoded walker set used when the server
// starts without a spawn section in its config. Real worlds should define
// their walkers in config instead.
func DemoDefinitions() []Definition {
	return []Definition{
		{
			Name:         "gate-sentry",
			Kind:         KindPatrol,
			X:            4,
			Y:            4,
			Waypoints:    [][2]int32{{4, 12}, {12, 12}, {12, 4}, {4, 4}},
			RespawnDelay: time.Minute,
		},
		{
			Name:      "caravan-master",
			Kind:      KindPatrol,
			X:         20,
			Y:         20,
			Waypoints: [][2]int32{{20, 28}, {28, 28}, {28, 20}, {20, 20}},
		},
		{
			Name:   "caravan-porter",
			Kind:   KindEscort,
			X:      21,
			Y:      20,
			Leader: "caravan-master",
		},
	}
}
