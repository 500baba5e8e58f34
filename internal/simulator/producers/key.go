package producers

import "encoding/json"

// studentKey pulls the student id out of a serialised event.
func studentKey(msg []byte) string {
	var head struct {
		StudentID string `json:"studentId"`
	}
	if err := json.Unmarshal(msg, &head); err != nil {
		return ""
	}
	return head.StudentID
}
