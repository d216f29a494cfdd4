package config

import "sort"

func transport() LimitsConfig {
	return LimitsConfig{
		VMin: 200, VMax: 850, ClimbMin: -100, ClimbMax: 100, QMaxDeg: 3, RMaxDeg: 1000,
	}
}

func generalAviation() LimitsConfig {
	return LimitsConfig{
		VMin: 90, VMax: 300, ClimbMin: -30, ClimbMax: 20, QMaxDeg: 3, RMaxDeg: 1000,
	}
}

func straight() [][]float64 {
	return [][]float64{{0, 0, 0, 0}}
}

// Presets are built-in encounters. Each call returns a fresh Config.
var Presets = map[string]func() *Config{
	"head_on": func() *Config {
		return &Config{
			Name: "head_on", Duration: 40,
			Encounter: EncounterConfig{Mode: "nmac", Radius: DefaultRadius, HalfHeight: DefaultHalfHeight},
			Aircraft: []AircraftConfig{
				{Init: InitConfig{Speed: 300, Up: 8000}, Limits: transport(), Commands: straight()},
				{Init: InitConfig{Speed: 300, North: 12000, Up: 8000, HeadingDeg: 180}, Limits: transport(), Commands: straight()},
			},
		}
	},
	"crossing": func() *Config {
		return &Config{
			Name: "crossing", Duration: 60,
			Encounter: EncounterConfig{Mode: "cylinder", Radius: 6076, HalfHeight: 1000, Latch: true, Continuation: 5},
			Aircraft: []AircraftConfig{
				{Init: InitConfig{Speed: 250, Up: 6000}, Limits: generalAviation(), Commands: straight()},
				{Init: InitConfig{Speed: 250, North: 5000, East: 5000, Up: 6200, HeadingDeg: 270}, Limits: generalAviation(), Commands: straight()},
			},
		}
	},
	"overtake": func() *Config {
		return &Config{
			Name: "overtake", Duration: 40,
			Encounter: EncounterConfig{Mode: "none", Radius: DefaultRadius, HalfHeight: DefaultHalfHeight},
			Aircraft: []AircraftConfig{
				{Init: InitConfig{Speed: 200, North: 2000, Up: 5000}, Limits: generalAviation(), Commands: straight()},
				{Init: InitConfig{Speed: 280, Up: 5050}, Limits: generalAviation(), Commands: straight()},
			},
		}
	},
	"climb_through": func() *Config {
		return &Config{
			Name: "climb_through", Duration: 60,
			Encounter: EncounterConfig{Mode: "nmac", Radius: DefaultRadius, HalfHeight: DefaultHalfHeight},
			Aircraft: []AircraftConfig{
				{Init: InitConfig{Speed: 400, Up: 11000}, Limits: transport(), Commands: straight()},
				{
					Init:     InitConfig{Speed: 400, North: 16000, Up: 10200, HeadingDeg: 180},
					Limits:   transport(),
					Commands: [][]float64{{0, 0, 0, 0}, {2, 50, 0, 0}},
				},
			},
		}
	},
	"parallel_miss": func() *Config {
		return &Config{
			Name: "parallel_miss", Duration: 60,
			Encounter: EncounterConfig{Mode: "cylinder", Radius: 1500, HalfHeight: 500, Latch: true},
			Aircraft: []AircraftConfig{
				{Init: InitConfig{Speed: 250, Up: 7000}, Limits: generalAviation(), Commands: straight()},
				{Init: InitConfig{Speed: 250, North: 8000, East: 2000, Up: 7000, HeadingDeg: 180}, Limits: generalAviation(), Commands: straight()},
			},
		}
	},
	"turning_conflict": func() *Config {
		return &Config{
			Name: "turning_conflict", Duration: 90,
			Encounter: EncounterConfig{Mode: "cylinder", Radius: 6076, HalfHeight: 800, Latch: true, Continuation: 10, MinTime: 20},
			Aircraft: []AircraftConfig{
				{
					Init:     InitConfig{Speed: 250, Up: 9000},
					Limits:   generalAviation(),
					Commands: [][]float64{{0, 0, 0, 0}, {10, 0, 3, 0}, {40, 0, 0, 0}},
				},
				{Init: InitConfig{Speed: 300, North: 9000, East: 9000, Up: 9300, HeadingDeg: 225}, Limits: transport(), Commands: [][]float64{{0, -10, 0, 2}}},
			},
		}
	},
}

func GetPreset(name string) *Config {
	fn, ok := Presets[name]
	if !ok {
		return nil
	}
	return fn()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
