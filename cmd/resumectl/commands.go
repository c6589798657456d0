package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"resume-analyzer/internal/analyses"
	"resume-analyzer/internal/bootstrap"
	"resume-analyzer/internal/shared/config"
	"resume-analyzer/internal/shared/util"
)

func newApp(out io.Writer) *cli.Command {
	catalogFlag := &cli.StringFlag{
		Name:  "catalog",
		Usage: "path to a YAML skills catalog (overrides SKILLS_CATALOG_PATH)",
	}
	policyFlag := &cli.StringFlag{
		Name:  "policy",
		Usage: "first_match or all_matches (overrides SKILLS_POLICY)",
	}

	return &cli.Command{
		Name:  "resumectl",
		Usage: "run resume analyses and inspect stored results",
		Commands: []*cli.Command{
			{
				Name:      "analyze",
				Usage:     "extract and classify a local PDF or DOCX without storing it",
				ArgsUsage: "<file>",
				Flags:     []cli.Flag{catalogFlag, policyFlag},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return analyzeAction(ctx, cmd, out)
				},
			},
			{
				Name:      "result",
				Usage:     "print a stored analysis record",
				ArgsUsage: "<id>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return resultAction(ctx, cmd, out)
				},
			},
			{
				Name:  "skills",
				Usage: "print the active skills catalog",
				Flags: []cli.Flag{catalogFlag, policyFlag},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return skillsAction(ctx, cmd, out)
				},
			},
		},
	}
}

func loadConfig(cmd *cli.Command) config.Config {
	cfg := config.Load()
	if cmd.IsSet("catalog") {
		cfg.Analysis.SkillsCatalogPath = cmd.String("catalog")
	}
	if cmd.IsSet("policy") {
		cfg.Analysis.SkillsPolicy = cmd.String("policy")
	}
	return cfg
}

func analyzeAction(ctx context.Context, cmd *cli.Command, out io.Writer) error {
	path := cmd.Args().First()
	if path == "" {
		return errors.New("analyze: file path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("analyze: read %s: %w", path, err)
	}

	pipeline, _, err := bootstrap.BuildPipeline(loadConfig(cmd))
	if err != nil {
		return err
	}
	filename, err := util.SanitizeFileName(filepath.Base(path))
	if err != nil {
		return err
	}
	result, err := pipeline.Analyze(ctx, data, filename)
	if err != nil {
		return fmt.Errorf("analyze %s: %w", filename, err)
	}
	return writeJSON(out, result.Payload())
}

func resultAction(ctx context.Context, cmd *cli.Command, out io.Writer) error {
	id := cmd.Args().First()
	if id == "" {
		return errors.New("result: id is required")
	}
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("result: %w: %q", analyses.ErrInvalidID, id)
	}

	repo, sqlDB, err := bootstrap.BuildRepo(ctx, loadConfig(cmd))
	if err != nil {
		return err
	}
	if sqlDB != nil {
		defer sqlDB.Close()
	}

	rec, err := repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, analyses.ErrNotFound) {
			return fmt.Errorf("result: no analysis with id %s", id)
		}
		return err
	}
	rec.RawContent = nil
	return writeJSON(out, rec)
}

func skillsAction(_ context.Context, cmd *cli.Command, out io.Writer) error {
	_, classifier, err := bootstrap.BuildPipeline(loadConfig(cmd))
	if err != nil {
		return err
	}
	catalog := classifier.Catalog()
	catalog.Policy = classifier.Policy()
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(catalog); err != nil {
		return err
	}
	return enc.Close()
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
