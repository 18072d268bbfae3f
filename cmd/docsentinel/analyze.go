package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/c360studio/docsentinel/agent"
	"github.com/c360studio/docsentinel/audit"
	"github.com/c360studio/docsentinel/config"
	"github.com/c360studio/docsentinel/document"
	"github.com/c360studio/docsentinel/llm"
	"github.com/c360studio/docsentinel/store"
)

func analyzeCmd() *cobra.Command {
	var (
		configPath string
		docType    string
		archive    bool
		noFollowUp bool
	)

	cmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Analyze a document for authenticity and fraud risk",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(args[0], configPath, docType, archive, noFollowUp)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Config file path (YAML)")
	cmd.Flags().StringVarP(&docType, "type", "t", "bank_statement",
		"Document type (bank_statement, tax_return, pay_stub, investment_statement, other)")
	cmd.Flags().BoolVar(&archive, "archive", false, "Store the upload and report in object storage")
	cmd.Flags().BoolVar(&noFollowUp, "no-follow-up", false, "Skip follow-up question generation")

	return cmd
}

func runAnalyze(path, configPath, docType string, archive, noFollowUp bool) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if cfg.Agent.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Agent.Timeout)
		defer cancel()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading document: %w", err)
	}
	doc := document.New(data, filepath.Base(path), parseDocType(docType))
	defer document.Zeroize(doc.Data)

	sink, err := buildSink(cfg)
	if err != nil {
		return fmt.Errorf("opening audit sink: %w", err)
	}
	defer sink.Close()

	registry, err := buildRegistry(cfg)
	if err != nil {
		return err
	}

	recorder := audit.NewRecorder(sink, doc.Hash(), slog.Default())
	client := llm.NewClient(registry,
		llm.WithLogger(slog.Default()),
		llm.WithCallRecorder(recorder),
	)

	metrics := agent.NewMetrics(prometheus.NewRegistry())
	analyst := agent.NewAnalyst(client,
		agent.WithValidator(document.NewValidator(document.WithMaxFileSize(cfg.Limits.MaxFileSize))),
		agent.WithToolCallRecorder(recorder),
		agent.WithLogger(slog.Default()),
		agent.WithMetrics(metrics),
		agent.WithMaxIterations(cfg.Agent.MaxIterations),
		agent.WithTemperature(cfg.Agent.Temperature),
	)

	session, err := document.NewSessionKey()
	if err != nil {
		return fmt.Errorf("generating session key: %w", err)
	}

	if err := sink.Write(ctx, uploadAuditEvent(doc, session)); err != nil {
		slog.Warn("audit sink write failed", "error", err)
	}

	verdict, err := analyst.Analyze(ctx, doc)

	if sinkErr := sink.Write(ctx, analysisAuditEvent(doc, session, verdict, err)); sinkErr != nil {
		slog.Warn("audit sink write failed", "error", sinkErr)
	}

	if err != nil {
		return err
	}

	if !noFollowUp {
		gen := agent.NewFollowUpGenerator(client, slog.Default(), metrics)
		verdict.FollowUpQuestions = gen.Generate(ctx, doc, verdict)
	}

	report := agent.NewReport(verdict)
	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	fmt.Println(string(out))

	if archive {
		if err := archiveAnalysis(ctx, cfg, doc, out); err != nil {
			return fmt.Errorf("archiving: %w", err)
		}
	}

	return nil
}

// uploadAuditEvent records a document submission with its size and declared
// type.
func uploadAuditEvent(doc document.Document, session string) audit.Event {
	return audit.NewEvent(audit.EventDocumentUpload, doc.Hash(), doc.Filename, map[string]any{
		"session":   session,
		"file_size": len(doc.Data),
		"type":      string(doc.Type),
	})
}

// analysisAuditEvent records an analysis outcome: the recommendation and
// result length on success, the error otherwise.
func analysisAuditEvent(doc document.Document, session string, verdict *agent.Verdict, analysisErr error) audit.Event {
	meta := map[string]any{
		"session": session,
		"success": analysisErr == nil,
	}
	if verdict != nil {
		meta["recommendation"] = string(verdict.Recommendation)
		meta["result_length"] = len(verdict.Narrative)
	}
	if analysisErr != nil {
		meta["error"] = analysisErr.Error()
	}
	return audit.NewEvent(audit.EventDocumentAnalysis, doc.Hash(), doc.Filename, meta)
}

// archiveAnalysis stores the raw upload and its report in object storage.
func archiveAnalysis(ctx context.Context, cfg *config.Config, doc document.Document, report []byte) error {
	objects, err := buildStore(ctx, cfg)
	if err != nil {
		return err
	}

	contentType := "application/pdf"
	switch doc.Ext() {
	case ".png":
		contentType = "image/png"
	case ".jpg", ".jpeg":
		contentType = "image/jpeg"
	}

	uploadKey := store.UploadKey(doc.Hash(), doc.Ext())
	if err := objects.Put(ctx, uploadKey, doc.Data, contentType); err != nil {
		return err
	}

	// Read back and verify: the key embeds the content hash, so a mismatch
	// means the stored object is not the document we analyzed.
	stored, err := objects.Get(ctx, uploadKey)
	if err != nil {
		return fmt.Errorf("verifying stored upload: %w", err)
	}
	if !document.VerifyIntegrity(stored, doc.Hash()) {
		return fmt.Errorf("stored upload %s does not match document hash", uploadKey)
	}

	return objects.Put(ctx, store.AnalysisKey(doc.Hash()), report, "application/json")
}

// parseDocType maps a CLI token to a document type.
func parseDocType(s string) document.Type {
	switch s {
	case "bank_statement":
		return document.TypeBankStatement
	case "tax_return":
		return document.TypeTaxReturn
	case "pay_stub":
		return document.TypePayStub
	case "investment_statement":
		return document.TypeInvestmentStatement
	default:
		return document.TypeOther
	}
}
