package sessionevents

import "encoding/json"

func encodeLifecycle(ev Lifecycle) ([]byte, error) {
	return json.Marshal(ev)
}

func decodeLifecycle(data []byte, ev *Lifecycle) error {
	return json.Unmarshal(data, ev)
}
