package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"ieltsforge/internal/config"
	"ieltsforge/internal/exam"
	"ieltsforge/internal/generate"
	"ieltsforge/internal/gepa"
	"ieltsforge/internal/llm"
	"ieltsforge/internal/logging"
	"ieltsforge/internal/retrieval"
	"ieltsforge/internal/scoring"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	// Global flags
	verbose    bool
	configPath string
	apiKey     string
	workspace  string
	timeout    time.Duration

	// Optimize flags
	budget      int
	seed        int64
	promptsPath string

	// Score flags
	questionsPath string

	cfg *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "ieltsforge",
	Short: "ieltsforge - IELTS Academic Reading exam generator",
	Long: `ieltsforge generates IELTS Academic Reading passages and multiple-choice
questions with an LLM, scores them against band-9 style criteria, and
evolves the generation prompts with a GEPA optimization loop (reflective
mutation + epsilon-Pareto candidate selection under a rollout budget).

Commands:
  optimize  Run the full GEPA loop and save the winning exam
  generate  Produce one passage with the score-and-rewrite loop
  score     Validate an existing passage (and optional question) file`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if workspace != "" {
			cfg.Workspace = workspace
		}
		if apiKey != "" {
			cfg.LLM.APIKey = apiKey
		}

		level := cfg.Logging.Level
		if verbose {
			level = "debug"
		}
		if err := logging.Initialize(logging.Options{
			Level:   level,
			Dir:     cfg.LogDir(),
			Console: cfg.Logging.Console,
		}); err != nil {
			return fmt.Errorf("failed to initialize logging: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
}

// optimizeCmd runs the full GEPA loop
var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Run the GEPA prompt optimization loop",
	Long: `Evolves the passage and question generation prompts:
  1. Seed a candidate pool from the base prompts
  2. Each iteration: evaluate a parent on a topic minibatch, mutate one
     module's prompt from the run feedback, evaluate the child
  3. Accept the child when it epsilon-dominates the parent (plus a small
     exploration probability), with an extended held-out evaluation
  4. Stop when the rollout budget is spent, then write the best
     candidate's exam to the workspace`,
	RunE: runOptimize,
}

// generateCmd produces a single passage via the rescoring loop
var generateCmd = &cobra.Command{
	Use:   "generate [topic]",
	Short: "Generate one passage with the score-and-rewrite loop",
	Long: `Generates a passage for the given topic (random when omitted), scores
it on every objective, and asks the LLM to rewrite it with the evaluator
feedback until all objectives clear the quality threshold or attempts run
out. Questions are generated from the surviving passage and the exam is
saved under the workspace.

Example:
  ieltsforge generate "The History of Navigation"`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGenerate,
}

// scoreCmd validates an existing passage file
var scoreCmd = &cobra.Command{
	Use:   "score [passage-file]",
	Short: "Score an existing passage file",
	Long: `Runs the validators and the LLM style judge over a passage read from
a file and prints the per-objective scores plus the estimated IELTS band.
Pass --questions to score a question set alongside it.`,
	Args: cobra.ExactArgs(1),
	RunE: runScore,
}

// topicsCmd lists the built-in topic catalog
var topicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "List the built-in passage topics",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, t := range generate.Topics {
			fmt.Println(t)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "ieltsforge.yaml", "Config file path")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "LLM API key (or set IELTSFORGE_API_KEY env)")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "Workspace directory (default: from config)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 4*time.Hour, "Overall operation timeout")

	optimizeCmd.Flags().IntVar(&budget, "budget", 0, "Override the rollout budget")
	optimizeCmd.Flags().Int64Var(&seed, "seed", 0, "Random seed (0 means time-based)")
	optimizeCmd.Flags().StringVar(&promptsPath, "prompts", "", "YAML file of per-module prompt overrides")
	generateCmd.Flags().StringVar(&promptsPath, "prompts", "", "YAML file of per-module prompt overrides")

	scoreCmd.Flags().StringVar(&questionsPath, "questions", "", "JSON question file to score with the passage")

	rootCmd.AddCommand(optimizeCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(topicsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// pipeline holds the wired generation and scoring components shared by the
// optimize and generate commands.
type pipeline struct {
	client    llm.Client
	judge     llm.Client
	scorer    *scoring.Scorer
	passage   *generate.PassageExecutor
	questions *generate.QuestionsExecutor
	writer    *exam.Writer
}

// buildPipeline wires the LLM clients, retriever, executors and scorer from
// the loaded configuration.
func buildPipeline(ctx context.Context) (*pipeline, error) {
	client, err := llm.NewFromConfig(ctx, cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("failed to build LLM client: %w", err)
	}

	// The judge model runs deterministically; it also drives reflective
	// mutation and passage rewriting.
	judgeCfg := cfg.LLM
	judgeCfg.Temperature = 0
	if cfg.LLM.JudgeModel != "" {
		judgeCfg.Model = cfg.LLM.JudgeModel
	}
	judge, err := llm.NewFromConfig(ctx, judgeCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build judge client: %w", err)
	}

	rules, err := scoring.LoadPenmanshipRules(filepath.Join(cfg.Workspace, "penmanship.yaml"))
	if err != nil {
		return nil, err
	}
	scorer := scoring.NewScorer(scoring.NewStyleJudge(judge), rules)

	var sources generate.SourceProvider
	if cfg.Retrieval.Enabled {
		sources = retrieval.NewRetriever(client, cfg.Retrieval)
	}

	return &pipeline{
		client:    client,
		judge:     judge,
		scorer:    scorer,
		passage:   generate.NewPassageExecutor(client, sources),
		questions: generate.NewQuestionsExecutor(client),
		writer:    exam.NewWriter(filepath.Join(cfg.Workspace, "exams")),
	}, nil
}

// basePrompts returns the built-in module prompts, merged with any
// per-module overrides from the --prompts YAML file.
func basePrompts() (map[string]string, error) {
	prompts := generate.BasePrompts()
	if promptsPath == "" {
		return prompts, nil
	}
	data, err := os.ReadFile(promptsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt file: %w", err)
	}
	overrides := map[string]string{}
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("failed to parse prompt file %s: %w", promptsPath, err)
	}
	for module, prompt := range overrides {
		if _, ok := prompts[module]; !ok {
			return nil, fmt.Errorf("prompt file names unknown module %q", module)
		}
		prompts[module] = prompt
	}
	return prompts, nil
}

// signalContext returns a context cancelled on SIGINT/SIGTERM or timeout.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			logging.Get(logging.CategoryBoot).Info("received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

// runOptimize wires the full GEPA stack and runs it over the topic catalog.
func runOptimize(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	if budget > 0 {
		cfg.GEPA.RolloutBudget = budget
	}

	p, err := buildPipeline(ctx)
	if err != nil {
		return err
	}

	executors := map[string]generate.Executor{
		generate.ModulePassage:   p.passage,
		generate.ModuleQuestions: p.questions,
	}
	score := func(ctx context.Context, outputs generate.Outputs, topic string) (map[string]float64, []string, []string) {
		set := p.scorer.ScoreAll(ctx, scoring.Outputs{
			Passage:   outputs[generate.ModulePassage],
			Questions: outputs[generate.ModuleQuestions],
		}, topic)
		return set.Scores, set.Raw, set.Feedback
	}

	runner, err := gepa.NewRunner(executors, generate.Modules, score)
	if err != nil {
		return err
	}
	journal, err := gepa.NewJournal(cfg.LogDir())
	if err != nil {
		return err
	}
	defer journal.Close()
	store, err := gepa.NewRunStore(cfg.RunDir())
	if err != nil {
		return err
	}
	defer store.Close()

	var rng *rand.Rand
	if seed != 0 {
		rng = rand.New(rand.NewSource(seed))
	}

	prompts, err := basePrompts()
	if err != nil {
		return err
	}
	opt, err := gepa.NewOptimizer(prompts, generate.Modules, gepa.Options{
		Config:  cfg.GEPA,
		Runner:  runner,
		Mutator: gepa.NewMutator(p.judge, cfg.GEPA.MutationAttempts),
		Journal: journal,
		Store:   store,
		Rand:    rng,
	})
	if err != nil {
		return err
	}

	logging.Get(logging.CategoryBoot).Infow("starting optimization",
		"budget", cfg.GEPA.RolloutBudget, "provider", cfg.LLM.Provider, "model", cfg.LLM.Model)

	best, err := opt.Run(ctx, generate.Modules, generate.Topics)
	if err != nil {
		return err
	}

	mean, _ := best.MeanScore()
	fmt.Printf("Best candidate: %s (mean score %.3f, band %.1f)\n",
		best.ID, mean, scoring.ToBand(mean))
	for module, prompt := range best.Prompts {
		fmt.Printf("\n--- %s prompt ---\n%s\n", module, prompt)
	}

	// Exercise the winner once on a fresh topic and keep the exam.
	topic := generate.RandomTopic(rand.New(rand.NewSource(time.Now().UnixNano())))
	res, err := runner.RunRollout(ctx, best, topic)
	if err != nil {
		return fmt.Errorf("final rollout failed: %w", err)
	}
	path, err := p.writer.Save(topic,
		res.Outputs[generate.ModulePassage],
		scoring.ParseQuestions(res.Outputs[generate.ModuleQuestions]))
	if err != nil {
		return err
	}
	fmt.Printf("\nExam saved to %s\n", path)
	return nil
}

// runGenerate produces a single exam through the rescoring loop.
func runGenerate(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	p, err := buildPipeline(ctx)
	if err != nil {
		return err
	}

	topic := generate.RandomTopic(rand.New(rand.NewSource(time.Now().UnixNano())))
	if len(args) == 1 {
		topic = args[0]
	}

	prompts, err := basePrompts()
	if err != nil {
		return err
	}
	rescorer := generate.NewRescorer(p.passage, p.questions, p.judge, p.scorer, prompts)
	res, err := rescorer.Run(ctx, topic)
	if err != nil {
		return err
	}

	printScores(res.Scores)
	fmt.Printf("Attempts: %d\n", res.Attempts)

	path, err := p.writer.Save(topic, res.Passage, scoring.ParseQuestions(res.Questions))
	if err != nil {
		return err
	}
	fmt.Printf("Exam saved to %s\n", path)
	return nil
}

// runScore validates a passage file (and optionally a question file).
func runScore(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	p, err := buildPipeline(ctx)
	if err != nil {
		return err
	}

	passageBytes, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read passage file: %w", err)
	}
	passage := string(passageBytes)
	topic := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))

	var set scoring.ScoreSet
	if questionsPath != "" {
		questionBytes, err := os.ReadFile(questionsPath)
		if err != nil {
			return fmt.Errorf("failed to read question file: %w", err)
		}
		set = p.scorer.ScoreAll(ctx, scoring.Outputs{
			Passage:   passage,
			Questions: string(questionBytes),
		}, topic)
	} else {
		set = p.scorer.ScorePassageOnly(ctx, passage, topic)
	}

	printScores(set)
	for _, fb := range set.Feedback {
		fmt.Printf("  %s\n", fb)
	}
	return nil
}

func printScores(set scoring.ScoreSet) {
	keys := make([]string, 0, len(set.Scores))
	for k := range set.Scores {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("%-28s %.3f\n", k, set.Scores[k])
	}
	fmt.Printf("Estimated band: %.1f\n", set.Band)
}
