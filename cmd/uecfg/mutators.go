package main

import (
	"context"
	"fmt"

	"github.com/SometimesYouNeverKnow/Unreal-Engine-Dev-Configurator/internal/configwriter"
	"github.com/SometimesYouNeverKnow/Unreal-Engine-Dev-Configurator/internal/probe"
	"github.com/SometimesYouNeverKnow/Unreal-Engine-Dev-Configurator/internal/setup"
)

// buildMutators wires the config-file actions the executor must not
// shell out for. Each handler proposes through the safe writer, so an
// already-correct file is a backup-free no-op.
func buildMutators(art *scanArtifacts, in scanInputs) map[string]setup.MutationFunc {
	writer := configwriter.NewWriter(art.Log).
		Allow("InstalledDerivedDataBackendGraph", "Shared")

	mutators := map[string]setup.MutationFunc{}

	mutators["horde.template"] = func(ctx context.Context, apply bool) (string, error) {
		paths := probe.BuildConfigurationPaths(in.UERoot)
		if len(paths) == 0 {
			return "", fmt.Errorf("no writable BuildConfiguration.xml location found")
		}
		opts := configwriter.BuildConfigOptions{EnableHorde: true}
		if art.Manifest != nil && art.Manifest.Horde != nil {
			opts.HordeServer = art.Manifest.Horde.Server
		}
		mutation, err := writer.ProposeFile(paths[0], configwriter.BuildConfigurationXML(opts))
		if err != nil {
			return "", err
		}
		if mutation.Empty() {
			return "no changes", nil
		}
		if !apply {
			return mutation.Diff, nil
		}
		if err := writer.Apply(mutation); err != nil {
			return "", err
		}
		return applyDetail(mutation), nil
	}

	mutators["ddc.shared"] = func(ctx context.Context, apply bool) (string, error) {
		if art.Manifest == nil || art.Manifest.Horde == nil || art.Manifest.Horde.SharedDDCPath == "" {
			return "", fmt.Errorf("manifest declares no shared DDC path")
		}
		if in.UERoot == "" {
			return "", fmt.Errorf("shared DDC configuration needs --ue-root")
		}
		value := fmt.Sprintf("(Type=FileSystem, Path=%s)", art.Manifest.Horde.SharedDDCPath)
		mutation, err := writer.Propose(probe.EngineConfigPath(in.UERoot), []configwriter.Setting{
			{Section: "InstalledDerivedDataBackendGraph", Key: "Shared", Value: value},
		})
		if err != nil {
			return "", err
		}
		if mutation.Empty() {
			return "no changes", nil
		}
		if !apply {
			return mutation.Diff, nil
		}
		if err := writer.Apply(mutation); err != nil {
			return "", err
		}
		return applyDetail(mutation), nil
	}

	return mutators
}

func applyDetail(m *configwriter.Mutation) string {
	if m.BackupPath != "" {
		return fmt.Sprintf("updated %s (backup %s)", m.Path, m.BackupPath)
	}
	return "created " + m.Path
}
