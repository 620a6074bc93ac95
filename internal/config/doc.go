// Package config loads runtime configuration for the CyberSib client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Environment: a .env file in the working directory (joho/godotenv)
//     followed by CYBERSIB_* variables.
//  3. Optional config file selected with -c or -config. Files ending in
//     .yaml or .yml are YAML, everything else JSON.
//  4. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-d string   data directory
//	-s string   store driver
//	-n string   store DSN
//	-l string   log level
//	-i int      refresh interval (seconds)
//
// # File schema
//
// Durations use timex.Duration, so they can be strings like "12h" or
// integer nanoseconds:
//
//	data_dir: data
//	store: {driver: sqlite}
//	session: {ttl: 12h}
//	hash: {algorithm: argon2id}
//	ranks:
//	  - {min_points: 0, title: Beginner}
//	  - {min_points: 100, title: Intermediate}
//	progress: {award_repeat_completions: false}
//	terminal: {buffer_lines: 100}
//	audit: {cap: 1000}
//	bootstrap: {demo_account: true, sample_accounts: true, admin_password: ""}
//	refresh_interval: 30s
//
// # Bootstrap accounts
//
// An empty store is seeded with the accounts enabled under bootstrap. They
// are ordinary accounts with well-known credentials, intended for local
// demos only:
//
//	demo / demo2024                demo_account (default on, CYBERSIB_BOOTSTRAP_DEMO)
//	test_student / student2024     sample_accounts (default on, CYBERSIB_BOOTSTRAP_SAMPLES)
//	ctf_champion / champion2024    sample_accounts; starts with three labs and three CTF solves
//	admin / <admin_password>       only when admin_password is set (CYBERSIB_BOOTSTRAP_ADMIN_PASSWORD)
//
// There is no admin account with a built-in password. Seeding happens once;
// changing these settings later does not add or remove accounts.
package config
