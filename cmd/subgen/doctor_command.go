package main

import (
	"fmt"
	"os/exec"

	"github.com/spf13/cobra"

	"subgen/internal/credentials"
)

type doctorCheck struct {
	name   string
	status string
	detail string
}

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check that subgen's runtime dependencies are available and configured",
		Annotations: map[string]string{
			"skipConfigLoad": "true",
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			checks := runDoctorChecks(ctx)

			headers := []string{"Check", "Status", "Detail"}
			rows := make([][]string, 0, len(checks))
			failed := false
			for _, c := range checks {
				if c.status != "ok" {
					failed = true
				}
				rows = append(rows, []string{c.name, colorizeStatus(c.status, cmd.OutOrStdout()), c.detail})
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, rows, []columnAlignment{alignLeft, alignLeft, alignLeft}))
			if failed {
				return fmt.Errorf("one or more checks failed")
			}
			return nil
		},
	}
}

func runDoctorChecks(ctx *commandContext) []doctorCheck {
	var checks []doctorCheck

	cfg, err := ctx.ensureConfig()
	if err != nil {
		checks = append(checks, doctorCheck{"config", "fail", err.Error()})
		return checks
	}
	checks = append(checks, doctorCheck{"config", "ok", "loaded"})

	ffmpeg := ctx.ffmpegBinary()
	if path, err := exec.LookPath(ffmpeg); err == nil {
		checks = append(checks, doctorCheck{"ffmpeg", "ok", path})
	} else {
		checks = append(checks, doctorCheck{"ffmpeg", "fail", "not found: " + ffmpeg})
	}

	ffprobe := ctx.ffprobeBinary(ffmpeg)
	if path, err := exec.LookPath(ffprobe); err == nil {
		checks = append(checks, doctorCheck{"ffprobe", "ok", path})
	} else {
		checks = append(checks, doctorCheck{"ffprobe", "warn", "not found: " + ffprobe})
	}

	if mgr, err := ctx.componentsManager(); err != nil {
		checks = append(checks, doctorCheck{"components", "fail", err.Error()})
	} else if installed, err := mgr.ListInstalled(); err != nil {
		checks = append(checks, doctorCheck{"components", "fail", err.Error()})
	} else if len(installed) == 0 {
		checks = append(checks, doctorCheck{"components", "warn", "none installed; run 'subgen install'"})
	} else {
		checks = append(checks, doctorCheck{"components", "ok", fmt.Sprintf("%d installed", len(installed))})
	}

	checks = append(checks, doctorCredentialCheck(ctx, cfg.Translation.Provider, "translation"))
	if cfg.Whisper.Provider == "cloud" {
		checks = append(checks, doctorCredentialCheck(ctx, "whisper", "whisper"))
	}

	return checks
}

func doctorCredentialCheck(ctx *commandContext, provider, label string) doctorCheck {
	if provider == "ollama" {
		return doctorCheck{label + " credentials", "ok", "not required for ollama"}
	}
	store, err := ctx.credentialsStore()
	if err != nil {
		return doctorCheck{label + " credentials", "fail", err.Error()}
	}
	if _, err := credentials.Resolve(provider, "", store, "", "", nil); err != nil {
		return doctorCheck{label + " credentials", "warn", "no API key configured"}
	}
	return doctorCheck{label + " credentials", "ok", "configured"}
}
