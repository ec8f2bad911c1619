// Package constants provides shared constants for the fincalc application.
package constants

// Calendar constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// DaysPerBillingMonth is the month length used by the electricity estimator
	DaysPerBillingMonth = 30

	// TripsPerYear assumes two trips per week for annual fuel cost
	TripsPerYear = 104
)

// Financial constants
const (
	// DecimalPrecision is the number of decimal places kept for currency
	DecimalPrecision = 2

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0

	// CurrencyTolerance is the tolerance for currency comparisons (1 paisa)
	CurrencyTolerance = 0.01

	// InflationAssumption is the fixed annual inflation used by the
	// inflation-adjusted lump sum and SIP projections.
	InflationAssumption = 0.06

	// DebtToIncomeLimit is the safe share of monthly income that may go to EMIs.
	DebtToIncomeLimit = 0.4

	// SafeHeadroomThreshold separates the "safe" band from "caution".
	SafeHeadroomThreshold = 3000.0

	// DepletionMaxYears caps the withdrawal simulation.
	DepletionMaxYears = 200

	// DepletionChartYears caps the withdrawal projection shown in analytics.
	DepletionChartYears = 30

	// LoanQuoteAmount is the reference loan size (one lakh) used to price
	// affordability by loan type.
	LoanQuoteAmount = 100000.0

	// PetrolCO2PerLitre is the approximate kg of CO2 emitted per litre burned.
	PetrolCO2PerLitre = 2.68
)

// Budget rule shares (50/30/20)
const (
	EssentialsShare    = 0.5
	SavingsShare       = 0.3
	DiscretionaryShare = 0.2

	// MaxExpenseSlices is the number of expense slices shown before the
	// remainder is grouped into "Others".
	MaxExpenseSlices = 5
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the JSON output format
	OutputFormatJSON = "json"

	// OutputFormatYAML is the YAML output format
	OutputFormatYAML = "yaml"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "fincalc.yaml"

	// EnvPrefix is the prefix for environment overrides, e.g. FINCALC_SERVER_ADDRESS
	EnvPrefix = "FINCALC"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address
	DefaultServerAddress = ":8080"

	// DefaultMaxBodySizeBytes is the default maximum request body size (256 KB)
	DefaultMaxBodySizeBytes int64 = 256 * 1024

	// UserHeader carries the signed-in user identity from the identity provider.
	UserHeader = "X-User-ID"
)

// History defaults
const (
	HistoryBackendMemory = "memory"
	HistoryBackendRedis  = "redis"

	// DefaultRecentLimit is the number of history records returned by default
	DefaultRecentLimit = 10

	// DefaultHistoryKeyPrefix namespaces the Redis keys
	DefaultHistoryKeyPrefix = "fincalc"

	// DefaultSaveTimeoutSeconds bounds a single fire-and-forget history save
	DefaultSaveTimeoutSeconds = 5
)

// Collaborator defaults
const (
	// DefaultAssistantEndpoint is the generative language endpoint base
	DefaultAssistantEndpoint = "https://generativelanguage.googleapis.com/v1beta/models"

	// DefaultAssistantModel is the model used for recommendations and predictions
	DefaultAssistantModel = "gemini-1.5-flash"

	// DefaultCollaboratorTimeoutSeconds bounds calls to external collaborators
	DefaultCollaboratorTimeoutSeconds = 30

	// DefaultLoanPredictorEndpoint is the loan approval model service
	DefaultLoanPredictorEndpoint = "http://localhost:8000/predict"

	// DefaultFuelProjectionSeed seeds the illustrative daily distance variation
	DefaultFuelProjectionSeed int64 = 1
)
