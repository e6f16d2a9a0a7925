package middleware

import "context"

// subjectKey stores the authenticated token subject in the request context.
const subjectKey = contextKey("subject")

// GetSubjectFromCtx returns the JWT subject of the authenticated caller.
func GetSubjectFromCtx(ctx context.Context) (string, bool) {
	subject, ok := ctx.Value(subjectKey).(string)
	return subject, ok && subject != ""
}
