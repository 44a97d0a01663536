package pipeline

// Stage is one step of the generation pipeline. Percent is the
// progress anchor reported when the stage begins.
type Stage struct {
	Index   int     `json:"step"`
	Name    string  `json:"name"`
	Percent float64 `json:"percent"`
}

// TotalStages is the fixed number of pipeline steps.
const TotalStages = 7

var (
	stageValidate = Stage{Index: 1, Name: "Validating Inputs", Percent: 0}
	stageDialogue = Stage{Index: 2, Name: "Generating Dialogue", Percent: 14}
	stageSpeech   = Stage{Index: 3, Name: "Synthesizing Speech", Percent: 28}
	stageScene    = Stage{Index: 4, Name: "Creating Background", Percent: 42}
	stageAnimate  = Stage{Index: 5, Name: "Animating Portraits", Percent: 56}
	stageAssemble = Stage{Index: 6, Name: "Assembling Video", Percent: 70}
	stageFinalize = Stage{Index: 7, Name: "Finalizing", Percent: 85}

	// StageComplete is reported once the output artifact is in place.
	StageComplete = Stage{Index: TotalStages, Name: "Complete", Percent: 100}
)

// Stages lists the pipeline steps in execution order.
func Stages() []Stage {
	return []Stage{
		stageValidate,
		stageDialogue,
		stageSpeech,
		stageScene,
		stageAnimate,
		stageAssemble,
		stageFinalize,
	}
}

// ProgressFunc receives stage transitions as the pipeline advances.
type ProgressFunc func(stage Stage)
