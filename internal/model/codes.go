package model

// StagedStatus tracks a staged student through ingestion and transfer.
type StagedStatus string

const (
	StagedStatusPenMatched  StagedStatus = "PENMATCHED"
	StagedStatusNoPenFound  StagedStatus = "NOPENFOUND"
	StagedStatusMerged      StagedStatus = "MERGED"
	StagedStatusTransfer    StagedStatus = "TRANSFER"
	StagedStatusTransferred StagedStatus = "TRANSFERED"
)

// TransferEligibleStatuses are the staged statuses picked up by the bulk
// ready-for-transfer update. NOPENFOUND rows carry no student identity.
var TransferEligibleStatuses = []StagedStatus{StagedStatusPenMatched, StagedStatusMerged}

type StagedResultStatus string

const (
	StagedResultLoaded    StagedResultStatus = "LOADED"
	StagedResultCompleted StagedResultStatus = "COMPLETED"
	StagedResultError     StagedResultStatus = "ERROR"
)

type ComponentTypeCode string

const (
	ComponentTypeMC ComponentTypeCode = "MUL_CHOICE"
	ComponentTypeOE ComponentTypeCode = "OPEN_ENDED"
)

type ComponentSubTypeCode string

const (
	ComponentSubTypeNone ComponentSubTypeCode = "NONE"
	ComponentSubTypeOral ComponentSubTypeCode = "ORAL"
)

// LegacyComponentType is the component code carried on a batch result row.
type LegacyComponentType string

const (
	LegacyMultipleChoice LegacyComponentType = "MUL_CHOICE"
	LegacyOpenEnded      LegacyComponentType = "OPEN_ENDED"
	LegacyOral           LegacyComponentType = "ORAL"
	LegacyBoth           LegacyComponentType = "BOTH"
)

func (c LegacyComponentType) Valid() bool {
	switch c {
	case LegacyMultipleChoice, LegacyOpenEnded, LegacyOral, LegacyBoth:
		return true
	}
	return false
}

type StudentStatusCode string

const (
	StudentStatusActive StudentStatusCode = "ACTIVE"
)

// Choice path codes select one of two task-code branches.
const (
	ChoicePathIndigenous = "I"
	ChoicePathEnglish    = "E"
)

// OtherChoicePath returns the branch excluded by the given path, or "" when
// the path is not a recognised code.
func OtherChoicePath(path string) string {
	switch path {
	case ChoicePathIndigenous:
		return ChoicePathEnglish
	case ChoicePathEnglish:
		return ChoicePathIndigenous
	}
	return ""
}
