package config

// Presets are ready-made scenarios for the CLI. Each is a complete config;
// CLI flags still override individual fields.
var Presets = map[string]*Config{
	"free": {
		GridSize: 64, Dx: 0.1, Dt: 0.005, TimeScale: 1.0, Hbar: 1.0, Mass: 1.0,
		Steps: 1000, SampleEvery: 10,
		Potential:   PotentialConfig{Type: "none", Strength: 0},
		Measurement: MeasurementConfig{Radius: 3.0},
		Packet:      PacketConfig{CenterXFrac: 0.5, CenterYFrac: 0.5, WidthCells: 3},
	},
	"drift": {
		GridSize: 64, Dx: 0.1, Dt: 0.005, TimeScale: 1.0, Hbar: 1.0, Mass: 1.0,
		Steps: 2000, SampleEvery: 10,
		Potential:   PotentialConfig{Type: "none", Strength: 0},
		Measurement: MeasurementConfig{Radius: 3.0},
		Packet:      PacketConfig{CenterXFrac: 0.25, CenterYFrac: 0.5, WidthCells: 3, MomentumX: 8},
	},
	"well": {
		GridSize: 64, Dx: 0.1, Dt: 0.005, TimeScale: 1.0, Hbar: 1.0, Mass: 1.0,
		Steps: 2000, SampleEvery: 10,
		Potential:   PotentialConfig{Type: "single", Strength: 10},
		Measurement: MeasurementConfig{Radius: 3.0},
		Packet:      PacketConfig{CenterXFrac: 0.4, CenterYFrac: 0.5, WidthCells: 3},
	},
	"tunneling": {
		GridSize: 128, Dx: 0.1, Dt: 0.002, TimeScale: 1.0, Hbar: 1.0, Mass: 1.0,
		Steps: 5000, SampleEvery: 25,
		Potential:   PotentialConfig{Type: "double", Strength: 15},
		Measurement: MeasurementConfig{Radius: 3.0},
		Packet:      PacketConfig{CenterXFrac: 0.5, CenterYFrac: 0.33, WidthCells: 4},
	},
	"lattice": {
		GridSize: 64, Dx: 0.1, Dt: 0.005, TimeScale: 1.0, Hbar: 1.0, Mass: 1.0,
		Steps: 2000, SampleEvery: 10,
		Potential:   PotentialConfig{Type: "sinusoid", Strength: 8},
		Measurement: MeasurementConfig{Radius: 3.0},
		Packet:      PacketConfig{CenterXFrac: 0.5, CenterYFrac: 0.5, WidthCells: 5, MomentumY: 4},
	},
}

func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	return names
}
