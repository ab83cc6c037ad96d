package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/SometimesYouNeverKnow/Unreal-Engine-Dev-Configurator/internal/engine"
	"github.com/SometimesYouNeverKnow/Unreal-Engine-Dev-Configurator/internal/logger"
	"github.com/SometimesYouNeverKnow/Unreal-Engine-Dev-Configurator/internal/manifest"
	"github.com/SometimesYouNeverKnow/Unreal-Engine-Dev-Configurator/internal/model"
	"github.com/SometimesYouNeverKnow/Unreal-Engine-Dev-Configurator/internal/probe"
	"github.com/SometimesYouNeverKnow/Unreal-Engine-Dev-Configurator/internal/profile"
	"github.com/SometimesYouNeverKnow/Unreal-Engine-Dev-Configurator/internal/setup"
)

// scanInputs collects the flags every scanning command shares.
type scanInputs struct {
	Phases       []int
	UERoot       string
	UEVersion    string
	ManifestPath string
	ProfileName  string
	IncludeHorde bool
	Verbose      bool
	LogFile      string
}

// scanArtifacts carries everything derived from one scan pipeline run.
type scanArtifacts struct {
	Scan     *engine.Scan
	Card     engine.Scorecard
	Verdict  *engine.ComplianceVerdict
	Manifest *manifest.Manifest
	Profile  profile.Profile
	Log      *logger.Logger
}

func newCommandLogger(verbose bool, logFile string) (*logger.Logger, error) {
	level := "info"
	if verbose {
		level = "debug"
	}
	return logger.New(logger.Options{Level: level, HumanReadable: true, FilePath: logFile})
}

// runScanPipeline resolves profile and manifest, runs the probes, and
// scores the outcome. A broken manifest is fatal with a usage exit
// since scoring against it would mislead.
func runScanPipeline(ctx context.Context, in scanInputs) (*scanArtifacts, error) {
	prof, err := profile.Parse(in.ProfileName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitFunc(setup.ExitUsage)
		return nil, err
	}

	log, err := newCommandLogger(in.Verbose, in.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		exitFunc(setup.ExitUsage)
		return nil, err
	}

	resolution, err := manifest.Resolve(in.ManifestPath, in.UEVersion, in.UERoot, manifest.DefaultDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading manifest: %v\n", err)
		exitFunc(setup.ExitUsage)
		return nil, err
	}
	m := resolution.Manifest
	if m != nil {
		log.WithFields(map[string]any{
			"manifest": m.ID,
			"source":   resolution.Source,
		}).Debug("manifest resolved")
	}

	phases := selectPhases(in, prof)

	pc := probe.NewContext(in.UERoot, m, log)
	scan := engine.Run(ctx, probe.DefaultRegistry(), pc, engine.ScanOptions{
		Phases:  phases,
		Profile: prof,
	})

	return &scanArtifacts{
		Scan:     scan,
		Card:     engine.ScoreScan(scan),
		Verdict:  engine.Compliance(scan, m),
		Manifest: m,
		Profile:  prof,
		Log:      log,
	}, nil
}

func selectPhases(in scanInputs, prof profile.Profile) []model.Phase {
	var phases []model.Phase
	if len(in.Phases) == 0 {
		phases = prof.DefaultPhases()
	} else {
		for _, n := range in.Phases {
			phases = append(phases, model.Phase(n))
		}
	}
	if in.IncludeHorde {
		found := false
		for _, p := range phases {
			if p == model.PhaseDistributed {
				found = true
			}
		}
		if !found {
			phases = append(phases, model.PhaseDistributed)
		}
	}
	return phases
}

// setupLogPath names the log file one remediation run writes to. The
// path is recorded in the persisted state so a resume can point back
// at the run that produced it.
func setupLogPath() string {
	return filepath.Join("logs", fmt.Sprintf("uecfg_setup_%s.log", time.Now().UTC().Format("20060102T150405")))
}

// stateStorePath puts the state file next to the engine root when one
// is known, otherwise in the working directory.
func stateStorePath(ueRoot string) string {
	if ueRoot != "" {
		return filepath.Join(ueRoot, setup.StateFileName)
	}
	return setup.StateFileName
}
