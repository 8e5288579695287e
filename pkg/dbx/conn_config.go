package dbx

// ConnConfig represents the configuration required for database connection.
//
// The struct is built once at the process boundary from the loaded service
// configuration; nothing below this layer reads environment variables.
type ConnConfig struct {
	VpcDirectConnection bool
	Host                string
	Port                int32
	DBName              string
	User                string
	Password            string
	MaxConn             int32
	IsLocalEnv          bool
}
