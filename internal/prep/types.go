// Package prep holds the interview preparation payload model: the current
// shape, detection of the older phase-keyed shape, and conversion between them.
package prep

import "encoding/json"

// Legacy payload keys.
const (
	keyPhase1 = "phase_1_company_research"
	keyPhase2 = "phase_2_strategic_analysis"
	keyPhase3 = "phase_3_interview_preparation"
	keyPhase4 = "phase_4_interview_questions"
)

// Values stamped on every question converted from the legacy shape, which
// carries no difficulty or rationale of its own.
const (
	DefaultCategory    = "behavioral"
	MigratedDifficulty = "medium"
	MigratedWhyAsked   = "Migrated from the earlier interview preparation format."
	fallbackRole       = "this role"
)

// InterviewPrep is the current payload shape. Every field is always present
// when produced by Normalize.
type InterviewPrep struct {
	Questions              []Question          `json:"questions"`
	StrategicAnalysis      StrategicAnalysis   `json:"strategicAnalysis"`
	CompanyIntelligence    CompanyIntelligence `json:"companyIntelligence"`
	CultureAndBenefits     CultureAndBenefits  `json:"cultureAndBenefits"`
	ApplicationContext     string              `json:"applicationContext"`
	KeyStrengths           []string            `json:"keyStrengths"`
	InterviewStructure     InterviewStructure  `json:"interviewStructure"`
	UniqueValueProposition string              `json:"uniqueValueProposition"`
	WhyThisCompany         string              `json:"whyThisCompany"`
	PotentialConcerns      []string            `json:"potentialConcerns"`
	QuestionsToAsk         []string            `json:"questionsToAsk"`
	KeyDomainConcepts      []string            `json:"keyDomainConcepts"`
	KeyCompetencies        []string            `json:"keyCompetencies"`

	// Audit trail for converted payloads.
	LegacyData json.RawMessage `json:"_legacyData,omitempty"`
	MigratedAt string          `json:"_migratedAt,omitempty"`
}

type Question struct {
	Question   string     `json:"question"`
	Category   string     `json:"category"`
	Difficulty string     `json:"difficulty"`
	WhyAsked   string     `json:"whyAsked"`
	StarAnswer StarAnswer `json:"starAnswer"`
	Tips       []string   `json:"tips"`
}

type StarAnswer struct {
	Situation string `json:"situation"`
	Task      string `json:"task"`
	Action    string `json:"action"`
	Result    string `json:"result"`
}

type StrategicAnalysis struct {
	Strengths           []string `json:"strengths"`
	Weaknesses          []string `json:"weaknesses"`
	Opportunities       []string `json:"opportunities"`
	Threats             []string `json:"threats"`
	CriticalStrength    string   `json:"criticalStrength"`
	CriticalWeakness    string   `json:"criticalWeakness"`
	CriticalOpportunity string   `json:"criticalOpportunity"`
	CriticalThreat      string   `json:"criticalThreat"`
	Competitors         []string `json:"competitors"`
	CompetitivePosition string   `json:"competitivePosition"`
}

type CompanyIntelligence struct {
	VisionMission        string `json:"visionMission"`
	IndustryPosition     string `json:"industryPosition"`
	ProductsServices     string `json:"productsServices"`
	FinancialPerformance string `json:"financialPerformance"`
}

type CultureAndBenefits struct {
	CultureInsights  []string `json:"cultureInsights"`
	StandoutBenefits []string `json:"standoutBenefits"`
}

type InterviewStructure struct {
	CoreRequirements []string `json:"coreRequirements"`
}
