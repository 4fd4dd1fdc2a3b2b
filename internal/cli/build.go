package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/soyeahso/agentwiz/internal/domain"
	"github.com/soyeahso/agentwiz/internal/wizard"
)

// Answers scripts a whole session.
type Answers struct {
	AgentName      string   `yaml:"agentName"`
	DisplayName    string   `yaml:"displayName"`
	Goal           string   `yaml:"goal"`
	Persona        string   `yaml:"persona"`
	LLMProfile     string   `yaml:"llmProfile"`
	Tools          []string `yaml:"tools"`
	KnowledgeBases []string `yaml:"knowledgeBases,omitempty"`
	// Feedback is sent as refinement requests before accepting.
	Feedback []string `yaml:"feedback,omitempty"`
}

func loadAnswers(path string) (Answers, error) {
	var a Answers
	data, err := os.ReadFile(path)
	if err != nil {
		return a, err
	}
	if err := yaml.Unmarshal(data, &a); err != nil {
		return a, fmt.Errorf("parsing %s: %w", path, err)
	}
	return a, nil
}

func newBuildCmd() *cobra.Command {
	var (
		file string
		out  string
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build an agent from an answers file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			answers, err := loadAnswers(file)
			if err != nil {
				return err
			}

			rt, err := openRuntime()
			if err != nil {
				return err
			}
			defer rt.Close()

			ctx := cmd.Context()
			w := rt.NewWizard(nil)
			defer w.Close()

			if err := runAnswers(ctx, w, rt.Loader, answers); err != nil {
				return err
			}
			if _, err := rt.Record(ctx, w); err != nil {
				log.Warn().Err(err).Msg("failed to record document")
			}

			if out == "" {
				data, err := w.Document().YAML()
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := writeDocument(w, out); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Saved %s\n", out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "answers file (YAML)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the agent YAML to this file instead of stdout")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// runAnswers drives w from welcome to complete. A failed generation or
// refinement is logged and the session continues with the content it has.
func runAnswers(ctx context.Context, w *wizard.Wizard, loader wizard.Loader, a Answers) error {
	if err := w.Start(ctx, loader); err != nil {
		return err
	}
	for _, f := range []struct{ field, value string }{
		{domain.FieldAgentName, a.AgentName},
		{domain.FieldDisplayName, a.DisplayName},
		{domain.FieldGoal, a.Goal},
	} {
		if err := w.SetIdentity(ctx, f.field, f.value); err != nil {
			return err
		}
	}
	if err := w.ChoosePersona(ctx, a.Persona); err != nil {
		return err
	}
	if err := w.ChooseLLMProfile(ctx, a.LLMProfile); err != nil {
		return err
	}
	if err := w.ChooseTools(ctx, a.Tools); err != nil {
		return err
	}
	if err := w.ChooseKnowledgeBases(ctx, a.KnowledgeBases); err != nil {
		return err
	}
	if err := w.GenerateContent(ctx); err != nil {
		if !domain.IsKind(err, domain.GenerationFailed) {
			return err
		}
		log.Warn().Err(err).Msg("using template content")
	}
	for _, feedback := range a.Feedback {
		if w.IsAccept(feedback) {
			break
		}
		if err := w.Respond(ctx, feedback); err != nil {
			if !domain.IsKind(err, domain.GenerationFailed) {
				return err
			}
			log.Warn().Err(err).Str("feedback", feedback).Msg("refinement failed")
		}
	}
	if err := w.Respond(ctx, w.AcceptPhrase()); err != nil {
		return err
	}
	return w.Finish(ctx)
}
