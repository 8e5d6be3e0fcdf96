// Package config provides centralized configuration management for the
// edustats pipeline and query server.
//
// # Configuration Sources
//
// Configuration is assembled from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. YAML configuration file (config.yaml, configs/config.yaml or EDU_CONFIG_FILE)
//	3. Default() values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern EDU_<SECTION>_<FIELD>:
//
//	EDU_SERVER_PORT=8080
//	EDU_LOGGING_LEVEL=debug
//	EDU_PATHS_ROOT_DIR=/srv/edustats
//	EDU_PIPELINE_CHANGE_WINDOW=5
//
// # Path Management
//
// Paths resolves the workspace layout once so that the pipeline and the
// server agree on where artifacts live:
//
//	root/
//	  data_raw/WDI_CSV/WDICSV.csv
//	  data_raw/WDI_CSV/WDICountry.csv
//	  data_clean/education_clean.csv
//	  data_clean/insights.json
//	  logs/
//
// # Validation
//
// Load validates the assembled struct with go-playground/validator tags.
package config
