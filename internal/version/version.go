package version

// version is stamped at build time:
//
//	go build -ldflags "-X github.com/adatari/shipit/internal/version.version=v1.2.3"
var version = "local"

func Get() string {
	return version
}
