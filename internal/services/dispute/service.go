package dispute

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"hospital-finder/internal/apperr"
	"hospital-finder/internal/services/llm"
)

const (
	DefaultPatientName = "John Doe"
	customProvider     = "Custom Provider"
)

// AnalyzeRequest names the uploaded files of one dispute. RulesPath is empty
// when the rules come from the provider registry.
type AnalyzeRequest struct {
	BillPath    string
	RulesPath   string
	Provider    string
	PatientName string
}

// Report is the outcome of a dispute analysis.
type Report struct {
	Providers        []string `json:"providers"`
	OverchargeReport string   `json:"ai_result"`
	DisputeLetter    string   `json:"dispute_letter"`
}

type Service struct {
	gateway     llm.Gateway
	registry    *Registry
	extract     TextExtractor
	temperature float64
}

func NewService(gateway llm.Gateway, registry *Registry, extract TextExtractor, temperature float64) *Service {
	if extract == nil {
		extract = ExtractPDFText
	}
	return &Service{
		gateway:     gateway,
		registry:    registry,
		extract:     extract,
		temperature: temperature,
	}
}

// Providers lists the selectable registry entries.
func (s *Service) Providers() []string {
	return s.registry.Names()
}

// CheckSelection fails unless the rules come from an upload or a known
// provider.
func (s *Service) CheckSelection(hasRulesUpload bool, provider string) error {
	if hasRulesUpload {
		return nil
	}
	if _, ok := s.registry.Path(provider); ok {
		return nil
	}
	return apperr.InvalidInput("No rules PDF selected or provider invalid.")
}

// Analyze extracts both documents, asks the model for overcharges and then
// for a dispute letter citing them.
func (s *Service) Analyze(ctx context.Context, req AnalyzeRequest) (*Report, error) {
	if err := s.CheckSelection(req.RulesPath != "", req.Provider); err != nil {
		return nil, err
	}

	rulesPath := req.RulesPath
	if rulesPath == "" {
		rulesPath, _ = s.registry.Path(req.Provider)
	}

	billText, err := s.extract(req.BillPath)
	if err != nil {
		return nil, documentError("Failed to read bill PDF", err)
	}
	rulesText, err := s.extract(rulesPath)
	if err != nil {
		return nil, documentError("Failed to read rules PDF", err)
	}

	patient := strings.TrimSpace(req.PatientName)
	if patient == "" {
		patient = DefaultPatientName
	}
	hospital := strings.TrimSpace(req.Provider)
	if hospital == "" {
		hospital = customProvider
	}

	start := time.Now()
	report, err := s.DetectOvercharges(ctx, rulesText, billText)
	if err != nil {
		return nil, modelError(err)
	}
	letter, err := s.DraftDisputeLetter(ctx, patient, hospital, billText, report)
	if err != nil {
		return nil, modelError(err)
	}

	log.Info().
		Str("provider", hospital).
		Int("bill_chars", len(billText)).
		Int("rules_chars", len(rulesText)).
		Dur("elapsed", time.Since(start)).
		Msg("Dispute analysis completed")

	return &Report{
		Providers:        s.registry.Names(),
		OverchargeReport: report,
		DisputeLetter:    letter,
	}, nil
}

// DetectOvercharges audits the bill against the rules text.
func (s *Service) DetectOvercharges(ctx context.Context, rulesText, billText string) (string, error) {
	return s.gateway.Complete(ctx, llm.Request{
		User:    overchargePrompt(rulesText, billText),
		Options: llm.Options{Temperature: s.temperature},
	})
}

// DraftDisputeLetter writes a formal letter referencing the overcharge report.
func (s *Service) DraftDisputeLetter(ctx context.Context, patientName, hospitalName, billText, overchargeReport string) (string, error) {
	return s.gateway.Complete(ctx, llm.Request{
		User:    disputeLetterPrompt(patientName, hospitalName, billText, overchargeReport),
		Options: llm.Options{Temperature: s.temperature},
	})
}

func documentError(message string, err error) error {
	var appErr *apperr.Error
	if errors.As(err, &appErr) && appErr.Cause != nil {
		err = appErr.Cause
	}
	return apperr.Document(message, err)
}

func modelError(err error) error {
	if errors.Is(err, llm.ErrMissingCredentials) {
		return apperr.Model("AI processing failed", errors.New("Missing OPENAI_API_KEY"))
	}
	return apperr.Model("AI processing failed", err)
}
