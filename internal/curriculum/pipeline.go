// Package curriculum runs the prompt-chaining pipeline that synthesizes a
// course curriculum stage by stage. Each stage's prompt sees the full
// transcript of every prior stage, and each stage's artifact is written into
// the request's working directory before the next stage starts.
package curriculum

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/studyhall-ai/tutord/internal/completion"
	"github.com/studyhall-ai/tutord/internal/workdir"
)

// Request carries the course parameters collected from the teacher.
type Request struct {
	LengthOfClassTotal      string   `json:"lengthOfClassTotal"`
	LengthOfClassPerSession string   `json:"lengthOfClassPerSession"`
	SessionsPerWeek         int      `json:"sessionsPerWeek"`
	GradeOrAge              string   `json:"gradeOrAge"`
	NumberOfStudents        int      `json:"numberOfStudents"`
	CertificatesOrStandards string   `json:"certificatesOrStandards"`
	EquipmentQuestions      []string `json:"equipmentQuestions"`
}

// Block is one curriculum unit in the structured skeleton.
type Block struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Skeleton is the strict structured output of the first stage. A response
// that does not parse as this shape aborts the whole pipeline.
type Skeleton struct {
	Blocks         []Block `json:"blocks"`
	FullCurriculum string  `json:"fullCurriculum"`
}

// Stage is one step of the chain. Structured stages decode into Skeleton;
// the raw JSON is still replayed into later stages' context.
type Stage struct {
	Name       string
	Structured bool
	Prompt     func(req Request) string
}

// DefaultStages is the full declared chain. How many actually run is a
// configuration choice; the tail stages (homework, quiz) are off by default.
var DefaultStages = []Stage{
	{Name: "skeleton", Structured: true, Prompt: skeletonPrompt},
	{Name: "lesson-plan", Prompt: func(Request) string { return lessonPlanPrompt }},
	{Name: "slide-plan", Prompt: func(Request) string { return slidePlanPrompt }},
	{Name: "homework", Prompt: func(Request) string { return homeworkPrompt }},
	{Name: "quiz", Prompt: func(Request) string { return quizPrompt }},
}

// Result is what the pipeline hands back to the caller. Outputs holds every
// executed stage's raw text keyed by stage name.
type Result struct {
	Skeleton   Skeleton
	Curriculum string
	LessonPlan string
	SlidePlan  string
	Outputs    map[string]string
}

type Pipeline struct {
	completions completion.Completer
	stages      []Stage
	enabled     int
	logger      *slog.Logger
}

// New builds a pipeline running the first enabled stages of stages.
func New(completions completion.Completer, stages []Stage, enabled int, logger *slog.Logger) *Pipeline {
	if enabled < 1 {
		enabled = 1
	}
	if enabled > len(stages) {
		enabled = len(stages)
	}
	return &Pipeline{completions: completions, stages: stages, enabled: enabled, logger: logger}
}

// Run executes the enabled stages in order, accumulating each stage's prompt
// and output as conversation context for the next. Every stage's artifact is
// written to <stage>.md in dir and the write is awaited; any stage or write
// failure aborts with no partial result.
func (p *Pipeline) Run(ctx context.Context, req Request, dir workdir.Dir) (Result, error) {
	result := Result{Outputs: make(map[string]string)}
	var transcript []completion.Turn

	for i, stage := range p.stages[:p.enabled] {
		prompt := stage.Prompt(req)
		turns := append(transcript, completion.Turn{Role: completion.RoleUser, Content: prompt})

		var raw string
		var err error
		if stage.Structured {
			raw, err = completion.CompleteJSON(ctx, p.completions, "CurriculumSkeleton", "", turns, &result.Skeleton)
		} else {
			raw, err = p.completions.Complete(ctx, "", turns)
		}
		if err != nil {
			return Result{}, fmt.Errorf("stage %q: %w", stage.Name, err)
		}

		transcript = append(turns, completion.Turn{Role: completion.RoleAssistant, Content: raw})
		result.Outputs[stage.Name] = raw

		if err := dir.WriteArtifact(stage.Name+".md", raw); err != nil {
			return Result{}, fmt.Errorf("stage %q: %w", stage.Name, err)
		}

		p.logger.Info("pipeline stage complete",
			"stage", stage.Name,
			"index", i+1,
			"of", p.enabled,
			"output_len", len(raw),
		)
	}

	result.Curriculum = result.Skeleton.FullCurriculum
	result.LessonPlan = result.Outputs["lesson-plan"]
	result.SlidePlan = result.Outputs["slide-plan"]
	return result, nil
}
