// Package domain holds the loan application state shared by every pipeline
// stage, plus the closed stage and status vocabularies the router dispatches
// on.
package domain

// Stage identifies one pipeline stage. The set is closed; the router matches
// exhaustively so a new stage cannot be added without updating the
// transition logic.
type Stage string

const (
	StageMaster       Stage = "master"
	StageSales        Stage = "sales"
	StageVerification Stage = "verification"
	StageUnderwriting Stage = "underwriting"
	StageFraud        Stage = "fraud"
	StageSanction     Stage = "sanction"
	StageAdvisor      Stage = "advisor"
	StageMasterFinal  Stage = "master_final"

	// StageEnd terminates the pipeline. No agent runs for it.
	StageEnd Stage = "END"
)

var knownStages = map[Stage]struct{}{
	StageMaster:       {},
	StageSales:        {},
	StageVerification: {},
	StageUnderwriting: {},
	StageFraud:        {},
	StageSanction:     {},
	StageAdvisor:      {},
	StageMasterFinal:  {},
	StageEnd:          {},
}

func IsKnownStage(stage Stage) bool {
	_, ok := knownStages[stage]
	return ok
}
