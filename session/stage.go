package session

// Stage is a call's position in the dialog
type Stage string

const (
	StageVerifyOrder    Stage = "verify_order"
	StageAfterDelivery  Stage = "after_delivery"
	StageRetentionOffer Stage = "retention_offer"
	StageHumanOffer     Stage = "human_offer"
	StageReturnConfirm  Stage = "return_confirm"
	StageDone           Stage = "done"
)

// ParseStage validates a stage name. Unknown names return false.
func ParseStage(s string) (Stage, bool) {
	switch st := Stage(s); st {
	case StageVerifyOrder, StageAfterDelivery, StageRetentionOffer,
		StageHumanOffer, StageReturnConfirm, StageDone:
		return st, true
	}
	return "", false
}

func (s Stage) String() string {
	return string(s)
}
