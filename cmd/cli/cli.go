package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/canopy-network/poh/cmd/rpc"
	"github.com/canopy-network/poh/controller"
	"github.com/canopy-network/poh/lib"
	"github.com/canopy-network/poh/lib/crypto"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var rootCmd = &cobra.Command{
	Use:   "poh",
	Short: "a proof of history clock with leader finality",
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(rpc.SoftwareVersion)
	},
}

var (
	client, config, l = &rpc.Client{}, lib.Config{}, lib.LoggerI(nil)
	DataDir, nodeKey  = "", crypto.PrivateKeyI(nil)
)

func init() {
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.PersistentFlags().StringVar(&DataDir, "data-dir", lib.DefaultDataDirPath(), "custom data directory location")
	// the data directory is only known once the flags are parsed
	cobra.OnInitialize(func() {
		config, nodeKey = InitializeDataDirectory(DataDir, lib.NewDefaultLogger())
		l = lib.NewLogger(lib.LoggerConfig{Level: config.GetLogLevel()}, config.DataDirPath)
		client = rpc.NewClient("http://localhost", config.RPCPort)
	})
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "start the node",
	Run: func(cmd *cobra.Command, args []string) {
		Start()
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "overwrite config.json in the data directory with the default configuration",
	Run: func(cmd *cobra.Command, args []string) {
		c := lib.DefaultConfig()
		c.DataDirPath = DataDir
		path := filepath.Join(DataDir, lib.ConfigFilePath)
		if err := c.WriteToFile(path); err != nil {
			l.Fatal(err.Error())
		}
		l.Infof("Wrote default configuration to %s", path)
	},
}

// Start() is the entrypoint of the application
func Start() {
	l.Infof("Using identity: PublicKey: %s", nodeKey.PublicKey().String())
	// create a new instance of the application
	app, err := controller.New(config, nodeKey, l)
	if err != nil {
		l.Fatal(err.Error())
	}
	// initialize the rpc server
	rpcServer := rpc.NewServer(app, config, l.With("rpc"))
	// start the application
	if err = app.Start(context.Background()); err != nil {
		l.Fatal(err.Error())
	}
	// start the rpc server
	rpcServer.Start()
	// block until a kill signal is received
	waitForKill()
	rpcServer.Stop()
	// gracefully stop the app
	if err = app.Stop(); err != nil {
		l.Error(err.Error())
	}
	os.Exit(0)
}

// waitForKill() blocks until a kill signal is received
func waitForKill() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGQUIT, syscall.SIGTERM, syscall.SIGABRT)
	// block until kill signal is received
	s := <-stop
	l.Infof("Exit command %s received", s)
}

// InitializeDataDirectory() populates the data directory with configuration and key files if missing
func InitializeDataDirectory(dataDirPath string, log lib.LoggerI) (c lib.Config, privateKey crypto.PrivateKeyI) {
	// make the data dir if missing
	if err := os.MkdirAll(dataDirPath, os.ModePerm); err != nil {
		log.Fatal(err.Error())
	}
	// make the config.json file if missing
	configFilePath := filepath.Join(dataDirPath, lib.ConfigFilePath)
	if _, err := os.Stat(configFilePath); errors.Is(err, os.ErrNotExist) {
		log.Infof("Creating %s file", lib.ConfigFilePath)
		if err = lib.DefaultConfig().WriteToFile(configFilePath); err != nil {
			log.Fatal(err.Error())
		}
	}
	// make the node key file if missing
	nodeKeyPath := filepath.Join(dataDirPath, lib.NodeKeyPath)
	if _, err := os.Stat(nodeKeyPath); errors.Is(err, os.ErrNotExist) {
		pk, e := crypto.NewEd25519PrivateKey()
		if e != nil {
			log.Fatal(e.Error())
		}
		log.Infof("Creating %s file", lib.NodeKeyPath)
		if err = crypto.PrivateKeyToFile(pk, nodeKeyPath); err != nil {
			log.Fatal(err.Error())
		}
	}
	// load the private key object
	privateKey, err := crypto.NewED25519PrivateKeyFromFile(nodeKeyPath)
	if err != nil {
		log.Fatal(err.Error())
	}
	// load the config object
	c, err = lib.NewConfigFromFile(configFilePath)
	if err != nil {
		log.Fatal(err.Error())
	}
	// set the data-directory
	c.DataDirPath = dataDirPath
	return
}

func writeToConsole(a any, err error) {
	if err != nil {
		l.Fatal(err.Error())
	}
	switch a.(type) {
	case int, uint32, uint64:
		p := message.NewPrinter(language.English)
		if _, err := p.Printf("%d\n", a); err != nil {
			l.Fatal(err.Error())
		}
	case string, *string:
		fmt.Println(a)
	default:
		s, err := lib.MarshalJSONIndentString(a)
		if err != nil {
			l.Fatal(err.Error())
		}
		fmt.Println(s)
	}
}
