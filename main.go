package main

import (
	"flag"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/silvan-habenicht/Webserver/docroot"
	httpx "github.com/silvan-habenicht/Webserver/http"
	"github.com/silvan-habenicht/Webserver/nfs"
	"github.com/silvan-habenicht/Webserver/tftp"
	"github.com/silvan-habenicht/Webserver/utils"
)

type config struct {
	mimeFile  string
	port      int
	iface     string
	root      string
	tftpAddr  string
	nfsAddr   string
	reusePort bool
	timeout   time.Duration
	bodyWait  time.Duration
}

func parseFlags(args []string, output io.Writer) (*config, error) {
	fs := flag.NewFlagSet("webserver", flag.ContinueOnError)
	fs.SetOutput(output)
	c := &config{}
	fs.StringVar(&c.mimeFile, "mime", "", "mime.types file mapping content types to extensions")
	fs.IntVar(&c.port, "port", 6789, "HTTP port")
	fs.StringVar(&c.iface, "iface", "", "interface to bind (default all)")
	fs.StringVar(&c.root, "root", ".", "document root")
	fs.StringVar(&c.tftpAddr, "tftp", "", "also serve the document root over TFTP on this address")
	fs.StringVar(&c.nfsAddr, "nfs", "", "also export the document root over NFSv3 on this address")
	fs.BoolVar(&c.reusePort, "reuseport", false, "set SO_REUSEPORT on the HTTP listener")
	fs.DurationVar(&c.timeout, "timeout", 0, "per-connection deadline (0 disables)")
	fs.DurationVar(&c.bodyWait, "bodytimeout", httpx.DefaultBodyTimeout, "wait for a POST body before answering 400 (0 disables)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return c, nil
}

func main() {
	cfg, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		os.Exit(2)
	}

	root, err := docroot.New(cfg.root)
	if err != nil {
		log.Fatalf("document root: %v", err)
	}

	host := ""
	if cfg.iface != "" {
		ip, err := utils.InterfaceIPv4(cfg.iface)
		if err != nil {
			log.Fatalf("interface %s: %v", cfg.iface, err)
		}
		host = ip.String()
	}

	loggerHTTP := log.New(os.Stdout, "http ", log.LstdFlags)
	mimes := httpx.LoadMimeTypes(cfg.mimeFile, loggerHTTP)
	srv := httpx.NewServer(root, mimes, loggerHTTP)
	srv.Timeout = cfg.timeout
	srv.BodyTimeout = cfg.bodyWait
	ln, err := httpx.StartHTTPServer(utils.JoinPort(host, cfg.port), srv, cfg.reusePort)
	if err != nil {
		log.Fatalf("start http failure: %v", err)
	}
	defer ln.Close()

	if cfg.tftpAddr != "" {
		loggerTFTP := log.New(os.Stdout, "tftp ", log.LstdFlags)
		ts, err := tftp.StartTFTPServer(cfg.tftpAddr, root, loggerTFTP)
		if err != nil {
			log.Fatalf("start tftp failure: %v", err)
		}
		defer ts.Shutdown()
	}

	if cfg.nfsAddr != "" {
		loggerNFS := log.New(os.Stdout, "nfs ", log.LstdFlags)
		nl, err := nfs.StartNFSServer(cfg.nfsAddr, root, loggerNFS)
		if err != nil {
			log.Fatalf("start nfs failure: %v", err)
		}
		defer nl.Close()
	}

	// Block until termination signal to keep goroutine servers alive
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop
	log.Printf("received signal %s, exiting", sig)
}
