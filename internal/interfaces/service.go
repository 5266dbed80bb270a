package interfaces

// Service defines the methods every interface exposed by the daemon, like the
// metrics endpoint, must be compliant with.
type Service interface {
	Start() error
	Stop()
}
