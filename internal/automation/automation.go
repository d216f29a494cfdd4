package automation

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/encsim/internal/config"
	"github.com/san-kum/encsim/internal/experiment"
	"github.com/san-kum/encsim/internal/log"
	"github.com/san-kum/encsim/internal/sim"
	"github.com/san-kum/encsim/internal/storage"
)

// Campaign is a scripted list of encounters run as one batch.
type Campaign struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Workers     int    `yaml:"workers"`
	Seed        int64  `yaml:"seed"`
	Steps       []Step `yaml:"steps"`

	dir string
}

// Step names one encounter source plus overrides. Perturb adds uniform
// noise in [-v, v] to each named parameter; with Trials > 1 the step
// expands into that many Monte Carlo runs.
type Step struct {
	Name    string             `yaml:"name"`
	Preset  string             `yaml:"preset"`
	File    string             `yaml:"file"`
	Set     map[string]float64 `yaml:"set"`
	Perturb map[string]float64 `yaml:"perturb"`
	Trials  int                `yaml:"trials"`
}

// Outcome is one finished run of a campaign.
type Outcome struct {
	Step      int
	Trial     int
	Encounter experiment.Encounter
	Result    *sim.Result
	RunID     string
}

func LoadCampaign(path string) (*Campaign, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var c Campaign
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	c.dir = filepath.Dir(path)

	return &c, nil
}

func (s Step) base(dir string) (*config.Config, error) {
	switch {
	case s.Preset != "" && s.File != "":
		return nil, fmt.Errorf("%w: step sets both preset and file", sim.ErrConfig)
	case s.Preset != "":
		cfg := config.GetPreset(s.Preset)
		if cfg == nil {
			return nil, fmt.Errorf("%w: unknown preset %q", sim.ErrConfig, s.Preset)
		}
		return cfg, nil
	case s.File != "":
		path := s.File
		if !filepath.IsAbs(path) && dir != "" {
			path = filepath.Join(dir, path)
		}
		return config.Load(path)
	}
	return nil, fmt.Errorf("%w: step needs a preset or a file", sim.ErrConfig)
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Expand turns the campaign into concrete encounters. The same seed
// always yields the same encounters.
func (c *Campaign) Expand() ([]experiment.Encounter, []Outcome, error) {
	rng := rand.New(rand.NewSource(c.Seed))

	var encs []experiment.Encounter
	var outcomes []Outcome
	for i, step := range c.Steps {
		base, err := step.base(c.dir)
		if err != nil {
			return nil, nil, fmt.Errorf("step %d: %w", i+1, err)
		}
		for _, k := range sortedKeys(step.Set) {
			if err := base.Set(k, step.Set[k]); err != nil {
				return nil, nil, fmt.Errorf("step %d: %w", i+1, err)
			}
		}

		name := step.Name
		if name == "" {
			name = base.Name
		}

		trials := max(step.Trials, 1)
		for trial := 0; trial < trials; trial++ {
			cfg := base.Clone()
			cfg.Name = name
			if trials > 1 {
				cfg.Name = fmt.Sprintf("%s_%03d", name, trial)
			}

			for _, k := range sortedKeys(step.Perturb) {
				v, err := base.Get(k)
				if err != nil {
					return nil, nil, fmt.Errorf("step %d: %w", i+1, err)
				}
				if err := cfg.Set(k, v+(rng.Float64()-0.5)*2*step.Perturb[k]); err != nil {
					return nil, nil, fmt.Errorf("step %d: %w", i+1, err)
				}
			}

			enc, err := cfg.ToEncounter()
			if err != nil {
				return nil, nil, fmt.Errorf("step %d trial %d: %w", i+1, trial, err)
			}
			encs = append(encs, enc)
			outcomes = append(outcomes, Outcome{Step: i, Trial: trial, Encounter: enc})
		}
	}

	return encs, outcomes, nil
}

// Run executes every encounter of the campaign as one batch and, when
// store is non-nil, saves each run.
func (c *Campaign) Run(ctx context.Context, lg *log.Logger, store *storage.Store) ([]Outcome, error) {
	encs, outcomes, err := c.Expand()
	if err != nil {
		return nil, err
	}
	lg.Info("campaign started", "name", c.Name, "runs", len(encs))

	results, err := experiment.NewBatch(c.Workers, lg).Run(ctx, encs)
	if err != nil {
		return nil, err
	}

	for i, res := range results {
		outcomes[i].Result = res
		if store != nil {
			id, err := store.Save(outcomes[i].Encounter, res)
			if err != nil {
				return outcomes, fmt.Errorf("save %s: %w", outcomes[i].Encounter.Name, err)
			}
			outcomes[i].RunID = id
		}
	}

	s := Summarize(outcomes)
	lg.Info("campaign finished", "name", c.Name, "runs", s.Runs, "nmac", s.NMAC, "early_stop", s.EarlyStop)
	return outcomes, nil
}

// Summary counts outcomes of a campaign.
type Summary struct {
	Runs      int
	NMAC      int
	EarlyStop int
	MinHMD    float64
}

func Summarize(outcomes []Outcome) Summary {
	s := Summary{MinHMD: -1}
	for _, o := range outcomes {
		if o.Result == nil {
			continue
		}
		s.Runs++
		if o.Result.Stats.NMAC {
			s.NMAC++
		}
		if o.Result.Stats.EarlyStop {
			s.EarlyStop++
		}
		if hmd, ok := o.Result.Metrics["hmd"]; ok && (s.MinHMD < 0 || hmd < s.MinHMD) {
			s.MinHMD = hmd
		}
	}
	return s
}
