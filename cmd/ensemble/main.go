// Command ensemble runs multi-agent workflows from the terminal.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/term"

	"ensemble/pkg/agent"
	"ensemble/pkg/config"
	"ensemble/pkg/llm/middleware/metrics"
	metricsquery "ensemble/pkg/metrics"
	"ensemble/pkg/orchestrator"
	"ensemble/pkg/registry"
	"ensemble/pkg/store"
	"ensemble/pkg/workflows"
)

// Version information - set by goreleaser via ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const usageText = `Usage: ensemble [flags] <command> [args]

Commands:
  analyze-pr <n>        Run the PR analysis workflow (diff from -diff or stdin)
  cleanup               Run the cleanup workflow (code from -code or stdin)
  generate-docs         Run the documentation workflow
  list-agents           Show the roster and initialization state
  credentials           Encrypt provider API keys from the environment into a local file
  run <file.yaml>       Run a workflow definition from a YAML file
  history               Show recent workflow runs
  usage <workflow-id>   Show token/cost usage for a workflow (needs Prometheus)

Flags:
`

func main() {
	var (
		projectDir  = flag.String("projectdir", ".", "Project directory")
		reportsDir  = flag.String("reports", "reports", "Report output directory")
		diffFile    = flag.String("diff", "", "Path to a diff file (analyze-pr)")
		codeFile    = flag.String("code", "", "Path to a code file (cleanup, generate-docs)")
		language    = flag.String("language", "go", "Source language of the input")
		projectName = flag.String("project", "", "Project name (generate-docs)")
		projectDesc = flag.String("description", "", "Project description (generate-docs)")
		offline     = flag.Bool("offline", false, "Skip the workflow registry entirely")
		metricsAddr = flag.String("metrics-addr", "", "Expose Prometheus metrics on this address (e.g. :9090)")
		promURL     = flag.String("prometheus", "http://localhost:9091", "Prometheus server URL (usage command)")
		historyDB   = flag.String("history-db", "", "History database path (default: <projectdir>/.ensemble/history.db)")
		limit       = flag.Int("limit", 20, "Max rows for history")
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usageText)
		flag.PrintDefaults()
	}
	flag.Parse()

	if *showVersion {
		fmt.Printf("ensemble %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
		os.Exit(0)
	}

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	// User interrupt exits 130, the shell convention for SIGINT.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\n🛑 Interrupted")
		os.Exit(130)
	}()

	cli := &app{
		projectDir: *projectDir,
		reportsDir: *reportsDir,
		diffFile:   *diffFile,
		codeFile:   *codeFile,
		language:   *language,
		project:    *projectName,
		desc:       *projectDesc,
		offline:    *offline,
		promURL:    *promURL,
		historyDB:  *historyDB,
		limit:      *limit,
	}
	if cli.historyDB == "" {
		cli.historyDB = filepath.Join(cli.projectDir, ".ensemble", "history.db")
	}

	if *metricsAddr != "" {
		go serveMetrics(*metricsAddr)
	}

	os.Exit(cli.run(flag.Arg(0), flag.Args()[1:]))
}

type app struct {
	projectDir string
	reportsDir string
	diffFile   string
	codeFile   string
	language   string
	project    string
	desc       string
	offline    bool
	promURL    string
	historyDB  string
	limit      int
}

func (a *app) run(command string, args []string) int {
	ctx := context.Background()

	var err error
	switch command {
	case "analyze-pr":
		err = a.analyzePR(ctx, args)
	case "cleanup":
		err = a.cleanup(ctx)
	case "generate-docs":
		err = a.generateDocs(ctx)
	case "list-agents":
		err = a.listAgents()
	case "credentials":
		err = a.saveCredentials()
	case "run":
		err = a.runFile(ctx, args)
	case "history":
		err = a.history(ctx)
	case "usage":
		err = a.usage(ctx, args)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command %q\n", command)
		flag.Usage()
		return 2
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		return 1
	}
	return 0
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	if err := http.ListenAndServe(addr, mux); err != nil {
		fmt.Fprintf(os.Stderr, "metrics listener failed: %v\n", err)
	}
}

// credentials merges environment credentials with the encrypted credentials
// file, prompting for the passphrase when the file exists.
func (a *app) credentials() (map[string]string, error) {
	creds := config.LoadCredentials()
	if !config.CredentialsFileExists(a.projectDir) {
		return creds, nil
	}

	fmt.Print("🔐 Credentials file passphrase: ")
	password, err := term.ReadPassword(syscall.Stdin)
	fmt.Println()
	if err != nil {
		return nil, fmt.Errorf("failed to read passphrase: %w", err)
	}

	fileCreds, err := config.DecryptCredentialsFile(a.projectDir, string(password))
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt credentials: %w", err)
	}
	return config.MergeCredentials(creds, fileCreds), nil
}

// saveCredentials encrypts the provider API keys currently set in the
// environment into the project's credentials file. Runs decrypt and merge the
// file over the environment afterwards.
func (a *app) saveCredentials() error {
	creds := config.LoadCredentials()
	if len(creds) == 0 {
		return fmt.Errorf("no provider API keys set in the environment (%v)", envVarNames())
	}

	fmt.Print("🔐 New passphrase: ")
	password, err := term.ReadPassword(syscall.Stdin)
	fmt.Println()
	if err != nil {
		return fmt.Errorf("failed to read passphrase: %w", err)
	}
	if len(password) == 0 {
		return fmt.Errorf("passphrase must not be empty")
	}

	fmt.Print("🔐 Confirm passphrase: ")
	confirm, err := term.ReadPassword(syscall.Stdin)
	fmt.Println()
	if err != nil {
		return fmt.Errorf("failed to read passphrase: %w", err)
	}
	if string(password) != string(confirm) {
		return fmt.Errorf("passphrases do not match")
	}

	if err := config.EncryptCredentialsFile(a.projectDir, string(password), creds); err != nil {
		return fmt.Errorf("failed to write credentials file: %w", err)
	}

	fmt.Printf("✅ Encrypted %d provider credential(s) into %s\n",
		len(creds), filepath.Join(a.projectDir, ".ensemble", "credentials.json.enc"))
	return nil
}

func envVarNames() []string {
	names := make([]string, 0, len(config.CredentialEnvVars))
	for _, provider := range config.Providers() {
		names = append(names, config.CredentialEnvVars[provider])
	}
	return names
}

// newOrchestrator builds the orchestrator with initialized agents.
func (a *app) newOrchestrator() (*orchestrator.Orchestrator, error) {
	creds, err := a.credentials()
	if err != nil {
		return nil, err
	}

	var reg registry.Client = registry.Nop{}
	if !a.offline {
		reg = registry.NewHTTPClient(config.RegistryAPIURL())
	}

	o := orchestrator.New(reg, orchestrator.Options{
		Agents: agent.Options{Recorder: metrics.NewPrometheusRecorder()},
	})
	o.InitializeAgents(creds)
	return o, nil
}

// execute creates the workflow, runs it, records it, and writes the report.
func (a *app) execute(ctx context.Context, def workflows.Definition) error {
	o, err := a.newOrchestrator()
	if err != nil {
		return err
	}

	fmt.Printf("🚀 %s (%d tasks)\n", def.Name, len(def.Tasks))

	id := o.CreateWorkflow(ctx, def.Name, def.Description, def.Type, "cli")
	outcome, err := o.RunWorkflow(ctx, id, def.Tasks)
	if err != nil {
		return err
	}

	a.recordHistory(ctx, outcome)
	path, err := a.writeReport(def.Type, outcome)
	if err != nil {
		return err
	}

	printOutcome(outcome)
	fmt.Printf("📄 Report: %s\n", path)
	return nil
}

func (a *app) recordHistory(ctx context.Context, outcome *orchestrator.WorkflowOutcome) {
	s, err := store.Open(a.historyDB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠️  History unavailable: %v\n", err)
		return
	}
	defer s.Close()
	if err := s.RecordOutcome(ctx, outcome); err != nil {
		fmt.Fprintf(os.Stderr, "⚠️  Failed to record history: %v\n", err)
	}
}

// writeReport writes the outcome JSON under a timestamped directory.
func (a *app) writeReport(workflowType string, outcome *orchestrator.WorkflowOutcome) (string, error) {
	dir := filepath.Join(a.reportsDir, time.Now().Format("20060102-150405"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	data, err := json.MarshalIndent(outcome, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal outcome: %w", err)
	}

	path := filepath.Join(dir, workflowType+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return path, nil
}

func printOutcome(outcome *orchestrator.WorkflowOutcome) {
	icon := "✅"
	if outcome.Status == orchestrator.StatusFailed {
		icon = "❌"
	} else if outcome.FailedTasks > 0 {
		icon = "⚠️ "
	}
	fmt.Printf("%s %s: %s (%d completed, %d failed, %d skipped, %dms)\n",
		icon, outcome.WorkflowName, outcome.Status,
		outcome.CompletedTasks, outcome.FailedTasks, outcome.SkippedTasks, outcome.DurationMS)

	for _, task := range outcome.Tasks {
		if !task.Success {
			fmt.Printf("   ❌ %s/%s: %s\n", task.AgentID, task.TaskType, task.Error)
		}
	}
}

// readInput returns the contents of path, or stdin when path is empty.
func readInput(path, what string) (string, error) {
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", what, err)
		}
		return string(data), nil
	}

	fmt.Fprintf(os.Stderr, "📥 Reading %s from stdin...\n", what)
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read %s from stdin: %w", what, err)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("no %s provided (use a flag or pipe to stdin)", what)
	}
	return string(data), nil
}

func (a *app) analyzePR(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: ensemble analyze-pr <number>")
	}
	prNumber, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid PR number %q", args[0])
	}

	diff, err := readInput(a.diffFile, "diff")
	if err != nil {
		return err
	}
	return a.execute(ctx, workflows.AnalyzePR(prNumber, diff, a.language))
}

func (a *app) cleanup(ctx context.Context) error {
	code, err := readInput(a.codeFile, "code")
	if err != nil {
		return err
	}
	return a.execute(ctx, workflows.Cleanup(code, a.language))
}

func (a *app) generateDocs(ctx context.Context) error {
	name := a.project
	if name == "" {
		abs, err := filepath.Abs(a.projectDir)
		if err != nil {
			return fmt.Errorf("failed to resolve project directory: %w", err)
		}
		name = filepath.Base(abs)
	}

	code, err := readInput(a.codeFile, "code")
	if err != nil {
		return err
	}
	return a.execute(ctx, workflows.GenerateDocs(name, a.desc, code, a.language))
}

func (a *app) listAgents() error {
	o, err := a.newOrchestrator()
	if err != nil {
		return err
	}

	fmt.Println("Available agents:")
	for _, s := range o.ListAvailableAgents() {
		state := "✅ ready"
		if !s.Initialized {
			state = "⛔ " + s.Reason
		}
		fmt.Printf("  %s %s (%s) — %s\n", s.Emoji, s.DisplayName, s.ID, s.Role)
		fmt.Printf("      specialties: %v\n", s.Specialties)
		fmt.Printf("      %s\n", state)
	}
	return nil
}

func (a *app) runFile(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: ensemble run <file.yaml>")
	}
	def, err := workflows.Load(args[0])
	if err != nil {
		return err
	}
	return a.execute(ctx, def)
}

func (a *app) history(ctx context.Context) error {
	s, err := store.Open(a.historyDB)
	if err != nil {
		return err
	}
	defer s.Close()

	runs, err := s.History(ctx, a.limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No workflow runs recorded yet.")
		return nil
	}

	for _, run := range runs {
		fmt.Printf("%s  %-36s  %-10s  %d/%d ok, %d failed  %dms  %q\n",
			run.RecordedAt.Local().Format("2006-01-02 15:04"),
			run.WorkflowID, run.Status,
			run.CompletedTasks, run.TotalTasks, run.FailedTasks,
			run.DurationMS, run.Name)
	}

	totals, err := s.AggregateTotals(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Total: %d workflows, %d tasks, %d tokens, $%.4f\n",
		totals.Workflows, totals.Tasks, totals.TokensUsed, totals.CostUSD)
	return nil
}

func (a *app) usage(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: ensemble usage <workflow-id>")
	}
	workflowID := args[0]

	svc, err := metricsquery.NewQueryService(a.promURL)
	if err != nil {
		return err
	}

	total, err := svc.WorkflowUsage(ctx, workflowID)
	if err != nil {
		return err
	}
	fmt.Printf("Workflow %s\n", workflowID)
	fmt.Printf("  tokens: %d prompt + %d completion = %d\n",
		total.PromptTokens, total.CompletionTokens, total.TotalTokens)
	fmt.Printf("  cost:   $%.4f\n", total.TotalCost)

	byAgent, err := svc.WorkflowUsageByAgent(ctx, workflowID)
	if err != nil {
		return err
	}
	for agentID, usage := range byAgent {
		fmt.Printf("  %s: %d tokens, $%.4f\n", agentID, usage.TotalTokens, usage.TotalCost)
	}
	return nil
}
