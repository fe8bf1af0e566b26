// internal/workers/voice/parse-voice-command/models.go
package parsevoicecommand

import "shopsense-voice/internal/models"

type Input = models.ParseRequest

type Output = models.ParseResponse
