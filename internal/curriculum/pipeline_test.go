package curriculum

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/studyhall-ai/tutord/internal/completion"
	"github.com/studyhall-ai/tutord/internal/workdir"
)

const skeletonJSON = `{"blocks":[{"title":"Week 1","description":"Basics"}],"fullCurriculum":"# Full Curriculum"}`

type fakeCompleter struct {
	structuredOut string
	freeOuts      []string
	freeCalls     int
	turnsSeen     [][]completion.Turn
}

func (f *fakeCompleter) Complete(_ context.Context, _ string, turns []completion.Turn) (string, error) {
	f.turnsSeen = append(f.turnsSeen, turns)
	out := "free-form output"
	if f.freeCalls < len(f.freeOuts) {
		out = f.freeOuts[f.freeCalls]
	}
	f.freeCalls++
	return out, nil
}

func (f *fakeCompleter) CompleteStructured(_ context.Context, _, _ string, _ map[string]interface{}, turns []completion.Turn) (string, error) {
	f.turnsSeen = append(f.turnsSeen, turns)
	return f.structuredOut, nil
}

func testRequest() Request {
	return Request{
		LengthOfClassTotal:      "12 weeks",
		LengthOfClassPerSession: "45 minutes",
		SessionsPerWeek:         3,
		GradeOrAge:              "high school",
		NumberOfStudents:        25,
		EquipmentQuestions:      []string{"projector available"},
	}
}

func TestRun_ThreeStagesAccumulateContext(t *testing.T) {
	completer := &fakeCompleter{
		structuredOut: skeletonJSON,
		freeOuts:      []string{"lesson plan text", "slide plan text"},
	}
	p := New(completer, DefaultStages, 3, slog.Default())
	dir, err := workdir.New(t.TempDir())
	if err != nil {
		t.Fatalf("workdir: %v", err)
	}

	result, err := p.Run(context.Background(), testRequest(), dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Curriculum != "# Full Curriculum" {
		t.Errorf("expected skeleton full curriculum, got %q", result.Curriculum)
	}
	if result.LessonPlan != "lesson plan text" {
		t.Errorf("expected lesson plan output, got %q", result.LessonPlan)
	}
	if result.SlidePlan != "slide plan text" {
		t.Errorf("expected slide plan output, got %q", result.SlidePlan)
	}
	if len(result.Skeleton.Blocks) != 1 || result.Skeleton.Blocks[0].Title != "Week 1" {
		t.Errorf("unexpected skeleton blocks: %+v", result.Skeleton.Blocks)
	}

	if len(completer.turnsSeen) != 3 {
		t.Fatalf("expected 3 stage completions, got %d", len(completer.turnsSeen))
	}
	// Stage 1 sees only its own prompt.
	if len(completer.turnsSeen[0]) != 1 {
		t.Errorf("stage 1 should see 1 turn, got %d", len(completer.turnsSeen[0]))
	}
	// Stage 2 sees stage 1's prompt, stage 1's raw output, and its own prompt.
	stage2 := completer.turnsSeen[1]
	if len(stage2) != 3 {
		t.Fatalf("stage 2 should see 3 turns, got %d", len(stage2))
	}
	if stage2[1].Role != completion.RoleAssistant || stage2[1].Content != skeletonJSON {
		t.Errorf("stage 1 raw output must be replayed as a prior assistant turn, got %+v", stage2[1])
	}
	// Stage 3 sees the full transcript of stages 1 and 2.
	stage3 := completer.turnsSeen[2]
	if len(stage3) != 5 {
		t.Fatalf("stage 3 should see 5 turns, got %d", len(stage3))
	}
	if stage3[3].Content != "lesson plan text" {
		t.Errorf("stage 2 output must be in stage 3 context, got %+v", stage3[3])
	}

	// Artifacts are written and awaited.
	for _, name := range []string{"skeleton.md", "lesson-plan.md", "slide-plan.md"} {
		if _, err := os.Stat(dir.Path(name)); err != nil {
			t.Errorf("expected artifact %s: %v", name, err)
		}
	}
	if _, err := os.Stat(dir.Path("homework.md")); err == nil {
		t.Error("homework stage must not run with 3 stages enabled")
	}
}

func TestRun_SkeletonParseFailureAborts(t *testing.T) {
	completer := &fakeCompleter{structuredOut: "this is not json"}
	p := New(completer, DefaultStages, 3, slog.Default())
	dir, err := workdir.New(t.TempDir())
	if err != nil {
		t.Fatalf("workdir: %v", err)
	}

	result, err := p.Run(context.Background(), testRequest(), dir)
	if err == nil {
		t.Fatal("expected parse failure to abort the pipeline")
	}
	if result.Curriculum != "" || result.Outputs != nil {
		t.Errorf("expected no partial result, got %+v", result)
	}
	if completer.freeCalls != 0 {
		t.Errorf("later stages must not run after a stage 1 failure, got %d calls", completer.freeCalls)
	}
	if _, statErr := os.Stat(dir.Path("skeleton.md")); statErr == nil {
		t.Error("no artifact should be written for a failed stage")
	}
}

func TestRun_FiveStagesRunTailChain(t *testing.T) {
	completer := &fakeCompleter{
		structuredOut: skeletonJSON,
		freeOuts:      []string{"lessons", "slides", "homework out", "quiz out"},
	}
	p := New(completer, DefaultStages, 5, slog.Default())
	dir, err := workdir.New(t.TempDir())
	if err != nil {
		t.Fatalf("workdir: %v", err)
	}

	result, err := p.Run(context.Background(), testRequest(), dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Outputs["homework"] != "homework out" || result.Outputs["quiz"] != "quiz out" {
		t.Errorf("expected tail stages to execute, got %+v", result.Outputs)
	}
	for _, name := range []string{"homework.md", "quiz.md"} {
		if _, err := os.Stat(dir.Path(name)); err != nil {
			t.Errorf("expected artifact %s: %v", name, err)
		}
	}
}

func TestNew_ClampsEnabledStages(t *testing.T) {
	p := New(&fakeCompleter{}, DefaultStages, 99, slog.Default())
	if p.enabled != len(DefaultStages) {
		t.Errorf("expected clamp to %d, got %d", len(DefaultStages), p.enabled)
	}
	p = New(&fakeCompleter{}, DefaultStages, 0, slog.Default())
	if p.enabled != 1 {
		t.Errorf("expected clamp to 1, got %d", p.enabled)
	}
}

func TestSkeletonPrompt_IncludesCourseParameters(t *testing.T) {
	prompt := skeletonPrompt(testRequest())

	for _, want := range []string{"12 weeks", "45 minutes", "high school", "projector available", "fullCurriculum"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("expected %q in skeleton prompt", want)
		}
	}
}
