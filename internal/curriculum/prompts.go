package curriculum

import (
	"fmt"
	"strings"
)

func skeletonPrompt(req Request) string {
	var b strings.Builder
	b.WriteString("I am designing a course and need a full curriculum skeleton.\n")
	fmt.Fprintf(&b, "Total course length: %s\n", req.LengthOfClassTotal)
	fmt.Fprintf(&b, "Length per session: %s\n", req.LengthOfClassPerSession)
	fmt.Fprintf(&b, "Sessions per week: %d\n", req.SessionsPerWeek)
	fmt.Fprintf(&b, "Grade or age of students: %s\n", req.GradeOrAge)
	fmt.Fprintf(&b, "Number of students: %d\n", req.NumberOfStudents)
	if req.CertificatesOrStandards != "" {
		fmt.Fprintf(&b, "Certificates or standards to meet: %s\n", req.CertificatesOrStandards)
	}
	if len(req.EquipmentQuestions) > 0 {
		fmt.Fprintf(&b, "Available equipment and constraints: %s\n", strings.Join(req.EquipmentQuestions, "; "))
	}
	b.WriteString(`
Break the course into curriculum blocks. Respond with JSON of the shape
{"blocks": [{"title": "...", "description": "..."}], "fullCurriculum": "..."}
where fullCurriculum is the complete curriculum as markdown.`)
	return b.String()
}

const lessonPlanPrompt = `Using the curriculum above, expand the first three weeks into a detailed lesson plan. Cover every session: objectives, activities, timing and materials. Respond in markdown.`

const slidePlanPrompt = `Now produce a day-by-day, slide-by-slide plan for those lessons. For every slide include the slide title, the slide content, teacher notes, and an idea for an illustrative image. Respond in markdown.`

const homeworkPrompt = `Now design homework assignments for each week of the lesson plan, matched to the students' level. Respond in markdown.`

const quizPrompt = `Finally, write a quiz assessing the material covered in the first three weeks, with an answer key. Respond in markdown.`
