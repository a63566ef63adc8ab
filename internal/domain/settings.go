package domain

// Settings holds the last selected identifiers. Device fields are
// device IDs, resolved against the gateway's enumeration at use time.
type Settings struct {
	AccountID   string `json:"accountId"`
	MeetingID   string `json:"meetingId"`
	Passcode    string `json:"passcode,omitempty"`
	AudioInput  string `json:"audioInput,omitempty"`
	AudioOutput string `json:"audioOutput,omitempty"`
	VideoInput  string `json:"videoInput,omitempty"`
}

// SettingsPatch is a partial update: nil fields keep the prior value.
type SettingsPatch struct {
	AccountID   *string `json:"accountId"`
	MeetingID   *string `json:"meetingId"`
	Passcode    *string `json:"passcode"`
	AudioInput  *string `json:"audioInput"`
	AudioOutput *string `json:"audioOutput"`
	VideoInput  *string `json:"videoInput"`
}

// Apply merges the patch field-wise: present keys overwrite, absent
// keys retain the prior value.
func (s *Settings) Apply(p SettingsPatch) {
	if p.AccountID != nil {
		s.AccountID = *p.AccountID
	}
	if p.MeetingID != nil {
		s.MeetingID = *p.MeetingID
	}
	if p.Passcode != nil {
		s.Passcode = *p.Passcode
	}
	if p.AudioInput != nil {
		s.AudioInput = *p.AudioInput
	}
	if p.AudioOutput != nil {
		s.AudioOutput = *p.AudioOutput
	}
	if p.VideoInput != nil {
		s.VideoInput = *p.VideoInput
	}
}
