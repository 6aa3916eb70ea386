package domain

import "image"

// Difficulty partitions the catalog for stratified session sampling.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Question models a multiple-choice question from the catalog.
// CorrectAnswer indexes Options; the catalog guarantees it is in range.
type Question struct {
	ID            string     `json:"id" yaml:"id"`
	Question      string     `json:"question" yaml:"question"`
	Options       []string   `json:"options" yaml:"options"`
	CorrectAnswer int        `json:"correctAnswer" yaml:"correctAnswer"`
	Difficulty    Difficulty `json:"difficulty" yaml:"difficulty"`
	Category      string     `json:"category" yaml:"category"`
}

// RankTier names one of the five bands classifying a percentage score.
type RankTier string

const (
	RankGradientArchitect RankTier = "Gradient Architect"
	RankNeuralElite       RankTier = "Neural Elite"
	RankProtocolScholar   RankTier = "Protocol Scholar"
	RankDataExplorer      RankTier = "Data Explorer"
	RankModelInitiate     RankTier = "Model Initiate"
)

// ScoreResult is the immutable outcome of a completed session.
type ScoreResult struct {
	Total      int      `json:"total"`
	Correct    int      `json:"correct"`
	Wrong      int      `json:"wrong"`
	Percentage int      `json:"percentage"`
	Rank       RankTier `json:"rank"`
}

// Unanswered is the sentinel stored in an answer record for a skipped question.
const Unanswered = -1

// SessionState is a snapshot of a quiz session, broadcast to subscribers on
// every transition and countdown tick.
type SessionState struct {
	SessionID   string       `json:"sessionId"`
	Index       int          `json:"index"`
	Answers     []int        `json:"answers"`
	SecondsLeft int          `json:"secondsLeft"`
	Submitted   bool         `json:"submitted"`
	Result      *ScoreResult `json:"result,omitempty"`
}

// QuestionResult is the per-question breakdown sent to the analysis
// collaborator and the review endpoint.
type QuestionResult struct {
	Question      string `json:"question"`
	UserAnswer    string `json:"userAnswer"`
	CorrectAnswer string `json:"correctAnswer"`
	IsCorrect     bool   `json:"isCorrect"`
	Category      string `json:"category"`
	Difficulty    string `json:"difficulty"`
}

// AnalyzeRequest is the contract consumed by the external analysis service.
type AnalyzeRequest struct {
	Username   string           `json:"username"`
	Score      int              `json:"score"`
	Total      int              `json:"total"`
	Percentage int              `json:"percentage"`
	Rank       string           `json:"rank"`
	Results    []QuestionResult `json:"results"`
}

// Analysis is the collaborator's response: opaque markdown-ish text plus
// provenance fields.
type Analysis struct {
	AnalysisText    string  `json:"analysis"`
	TransactionHash *string `json:"transactionHash"`
	Verified        bool    `json:"verified"`
	Model           string  `json:"model"`
}

// CardOptions is the rendering input for one result card.
type CardOptions struct {
	Username            string
	ScorePercentage     int
	Rank                RankTier
	AvatarImage         image.Image
	UseGradientFallback bool
}

// SharePayload carries the social-share text for a rendered card.
type SharePayload struct {
	URL  string `json:"url"`
	Text string `json:"text"`
}
