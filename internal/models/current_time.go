package models

import "time"

// CurrentTimeModel is a timestamp in both machine and readable form.
type CurrentTimeModel struct {
	ReadableTime string `json:"readableTime"`
	Time         int64  `json:"time"`
}

func NewCurrentTimeModel(t time.Time) CurrentTimeModel {
	if t.IsZero() {
		return CurrentTimeModel{}
	}
	return CurrentTimeModel{
		ReadableTime: t.Format(time.RFC3339),
		Time:         t.UnixNano() / int64(time.Millisecond),
	}
}
