package errors

import "fmt"

// Convenience constructors for common error patterns

func ConfigNotFound(path string) *BuildError {
	return New(CategoryConfig, SeverityFatal, "configuration file not found").
		WithContext("path", path)
}

func ValidationFailed(field, reason string) *BuildError {
	return New(CategoryValidation, SeverityFatal, fmt.Sprintf("%s %s", field, reason)).
		WithContext("field", field)
}

func InvalidPlanConfig(cause error) *BuildError {
	return Wrap(cause, CategoryPlan, SeverityFatal, "invalid pagination configuration")
}

func StageFailed(stage string, cause error) *BuildError {
	return Wrap(cause, CategoryContent, SeverityFatal, "build stage failed").
		WithContext("stage", stage)
}

func DiscoveryError(cause error) *BuildError {
	return Wrap(cause, CategoryFileSystem, SeverityFatal, "content discovery failed")
}

func SlugConflict(cause error) *BuildError {
	return Wrap(cause, CategorySlug, SeverityFatal, "slug resolution failed")
}

func RenderError(page string, cause error) *BuildError {
	return Wrap(cause, CategoryRender, SeverityError, "page render failed").
		WithContext("page", page)
}

func HistoryError(operation string, cause error) *BuildError {
	return Wrap(cause, CategoryHistory, SeverityError, "history store operation failed").
		WithContext("operation", operation)
}
