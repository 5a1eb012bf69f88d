package constant

const (
	ChatMessageRoleUser      = "user"
	ChatMessageRoleAssistant = "assistant"

	SessionTypePhysical = "physical"
	SessionTypeMental   = "mental"
	SessionTypeGeneral  = "general"

	// Metadata key carrying the agent conversation id on every stored message.
	MetadataConversationID = "conversation_id"

	DefaultSessionMessageLimit = 50
)

var SessionTypes = []string{SessionTypePhysical, SessionTypeMental, SessionTypeGeneral}

func IsValidSessionType(t string) bool {
	for _, v := range SessionTypes {
		if v == t {
			return true
		}
	}
	return false
}

func DefaultSessionTitle(sessionType string) string {
	return sessionType + "健康咨询会话"
}

const (
	HealthDataTypeAll           = "all"
	HealthDataTypeHeartRate     = "heart_rate"
	HealthDataTypeSteps         = "steps"
	HealthDataTypeSleep         = "sleep"
	HealthDataTypeWeight        = "weight"
	HealthDataTypeBloodPressure = "blood_pressure"
	HealthDataTypeCalories      = "calories"
)

var HealthDataTypes = []string{
	HealthDataTypeHeartRate,
	HealthDataTypeSteps,
	HealthDataTypeSleep,
	HealthDataTypeWeight,
	HealthDataTypeBloodPressure,
	HealthDataTypeCalories,
}

func IsValidHealthDataType(t string) bool {
	for _, v := range HealthDataTypes {
		if v == t {
			return true
		}
	}
	return false
}

const (
	StatsPeriodDay   = "day"
	StatsPeriodWeek  = "week"
	StatsPeriodMonth = "month"
)

const (
	TrendIncreasing = "increasing"
	TrendDecreasing = "decreasing"
	TrendStable     = "stable"
	TrendNoData     = "no_data"
)
