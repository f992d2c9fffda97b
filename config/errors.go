package config

import "github.com/barricade-app/barricade/internal/apperr"

var (
	errInitFailed = &apperr.Error{
		Message: "unable to initialise Barricade settings from the configuration file",
	}

	errReadConfig = &apperr.Error{
		Message: "reading config file failed",
	}

	errWriteConfig = &apperr.Error{
		Message: "writing default config failed",
	}

	errInvalidPeriod = &apperr.Error{
		Message: "please provide a valid time period",
	}

	errInvalidStartDate = &apperr.Error{
		Message: "please provide a valid start date",
	}

	errInvalidDateRange = &apperr.Error{
		Message: "the start time must be earlier than the end time",
	}
)
