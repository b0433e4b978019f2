package prep

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// ErrNotLegacy is returned by Normalize when the payload already has a
// questions array or carries none of the legacy markers. Such payloads are
// left untouched.
var ErrNotLegacy = errors.New("payload carries no legacy interview prep markers")

// MigratedAtLayout matches the millisecond ISO-8601 form used by the web client.
const MigratedAtLayout = "2006-01-02T15:04:05.000Z07:00"

var whitespaceRun = regexp.MustCompile(`\s+`)

// Normalize converts a legacy phase-keyed payload into the current shape.
// The output depends only on raw and migratedAt.
func Normalize(raw []byte, migratedAt time.Time) (*InterviewPrep, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || !gjson.ValidBytes(raw) {
		return nil, ErrNotLegacy
	}
	doc := gjson.ParseBytes(raw)
	if !doc.IsObject() || doc.Get("questions").IsArray() || !hasLegacyMarker(doc) {
		return nil, ErrNotLegacy
	}

	phase1 := doc.Get(keyPhase1)
	phase2 := doc.Get(keyPhase2)
	phase3 := doc.Get(keyPhase3)
	phase4 := doc.Get(keyPhase4)

	keyStrengths, coreRequirements := CoreRequirementsTargets(phase3)

	out := &InterviewPrep{
		Questions:         questionsFrom(phase4),
		StrategicAnalysis: strategicAnalysisFrom(phase2),
		CompanyIntelligence: CompanyIntelligence{
			VisionMission:    text(phase1.Get("vision_mission")),
			IndustryPosition: text(phase1.Get("industry_position")),
			ProductsServices: text(phase1.Get("products_services")),
		},
		CultureAndBenefits: CultureAndBenefits{
			CultureInsights:  cultureInsights(phase1.Get("culture")),
			StandoutBenefits: []string{},
		},
		ApplicationContext:     applicationContext(phase3.Get("interview_structure")),
		KeyStrengths:           keyStrengths,
		InterviewStructure:     InterviewStructure{CoreRequirements: coreRequirements},
		UniqueValueProposition: text(phase3.Get("unique_value_proposition")),
		WhyThisCompany:         text(phase3.Get("why_company_why_leaving.why_company")),
		PotentialConcerns:      []string{},
		QuestionsToAsk:         []string{},
		KeyDomainConcepts:      []string{},
		KeyCompetencies:        []string{},

		LegacyData: json.RawMessage(append([]byte(nil), raw...)),
		MigratedAt: migratedAt.UTC().Format(MigratedAtLayout),
	}
	return out, nil
}

// NormalizePayload is Normalize for callers that only deal in raw JSON. When
// the payload is not legacy it is returned unchanged and converted is false.
func NormalizePayload(raw []byte, migratedAt time.Time) (out json.RawMessage, converted bool, err error) {
	p, err := Normalize(raw, migratedAt)
	if errors.Is(err, ErrNotLegacy) {
		return json.RawMessage(raw), false, nil
	}
	if err != nil {
		return nil, false, err
	}
	b, err := json.Marshal(p)
	if err != nil {
		return nil, false, fmt.Errorf("marshal interview prep: %w", err)
	}
	return b, true, nil
}

func questionsFrom(list gjson.Result) []Question {
	out := []Question{}
	if !list.IsArray() {
		return out
	}
	for _, q := range list.Array() {
		out = append(out, Question{
			Question:   text(q.Get("question")),
			Category:   CategoryFromInterviewerType(text(q.Get("interviewer_type"))),
			Difficulty: MigratedDifficulty,
			WhyAsked:   MigratedWhyAsked,
			StarAnswer: starAnswerFrom(q.Get("answer")),
			Tips:       []string{},
		})
	}
	return out
}

// CategoryFromInterviewerType lower-cases the label and joins words with
// underscores. An empty label maps to DefaultCategory.
func CategoryFromInterviewerType(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return DefaultCategory
	}
	return whitespaceRun.ReplaceAllString(strings.ToLower(label), "_")
}

func starAnswerFrom(answer gjson.Result) StarAnswer {
	if !answer.IsObject() {
		return StarAnswer{}
	}
	return StarAnswer{
		Situation: text(answer.Get("situation")),
		Task:      text(answer.Get("task")),
		Action:    text(answer.Get("action")),
		Result:    text(answer.Get("result")),
	}
}

func strategicAnalysisFrom(phase2 gjson.Result) StrategicAnalysis {
	swot := phase2.Get("swot_analysis")
	sa := StrategicAnalysis{
		Strengths:     stringList(swot.Get("strengths")),
		Weaknesses:    stringList(swot.Get("weaknesses")),
		Opportunities: stringList(swot.Get("opportunities")),
		Threats:       stringList(swot.Get("threats")),
		Competitors:   stringList(phase2.Get("competitive_landscape")),
	}
	sa.CriticalStrength = FirstOrEmpty(sa.Strengths)
	sa.CriticalWeakness = FirstOrEmpty(sa.Weaknesses)
	sa.CriticalOpportunity = FirstOrEmpty(sa.Opportunities)
	sa.CriticalThreat = FirstOrEmpty(sa.Threats)
	return sa
}

// FirstOrEmpty returns the first element of items, or "" when there is none.
func FirstOrEmpty(items []string) string {
	if len(items) == 0 {
		return ""
	}
	return items[0]
}

// CoreRequirementsTargets reads core_requirements once and returns independent
// copies for keyStrengths and interviewStructure.coreRequirements.
func CoreRequirementsTargets(phase3 gjson.Result) (keyStrengths, coreRequirements []string) {
	reqs := stringList(phase3.Get("core_requirements"))
	return reqs, cloneStrings(reqs)
}

func cultureInsights(culture gjson.Result) []string {
	if c := text(culture); c != "" {
		return []string{c}
	}
	return []string{}
}

func applicationContext(structure gjson.Result) string {
	s := text(structure)
	if s == "" {
		s = fallbackRole
	}
	return fmt.Sprintf("Interview preparation for %s, carried over from an earlier preparation format.", s)
}

// text renders a scalar as a string. Non-string values keep their JSON text
// so nothing is lost; absent and null become "".
func text(r gjson.Result) string {
	if !r.Exists() {
		return ""
	}
	switch r.Type {
	case gjson.Null:
		return ""
	case gjson.String:
		return r.Str
	default:
		return r.Raw
	}
}

// stringList never returns nil. Null elements are dropped.
func stringList(r gjson.Result) []string {
	out := []string{}
	if !r.IsArray() {
		return out
	}
	for _, item := range r.Array() {
		if item.Type == gjson.Null {
			continue
		}
		out = append(out, text(item))
	}
	return out
}

func cloneStrings(in []string) []string {
	return append([]string{}, in...)
}
