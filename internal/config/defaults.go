package config

// EnvPrefix is the prefix of environment variables that override settings,
// for example APIGATE_LISTEN or APIGATE_MATCH_CLIENT_IP.
const EnvPrefix = "APIGATE_"
