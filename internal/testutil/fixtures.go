package testutil

// SampleConfigYAML is a project config with a custom session and preset.
var SampleConfigYAML = `timer:
  work: 40
  rest: 20
  rounds: 6
  lead_in: false
sound:
  muted: true
notify:
  enabled: false
presets:
  - id: sprints
    name: Sprints
    work: 30
    rest: 90
    rounds: 6
`

// InvalidConfigYAML fails validation: work must be positive.
var InvalidConfigYAML = `timer:
  work: 0
  rest: 20
  rounds: 6
`

// SampleEventLog is a short JSON-lines event log for one session.
var SampleEventLog = `{"type":"session.start","timestamp":"2024-01-15T10:00:00Z","source":"timer","session_id":"abc123","work_duration":20,"rest_duration":10,"total_rounds":2}
{"type":"phase.changed","timestamp":"2024-01-15T10:00:20Z","source":"timer","from":"work","to":"rest","round":1,"total_rounds":2,"time_remaining":10}
{"type":"phase.changed","timestamp":"2024-01-15T10:00:30Z","source":"timer","from":"rest","to":"work","round":2,"total_rounds":2,"time_remaining":20}
{"type":"session.complete","timestamp":"2024-01-15T10:00:50Z","source":"timer","session_id":"abc123","rounds":2,"work_time":40,"rest_time":10,"total_time":50}
`
