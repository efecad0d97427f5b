package wink_test

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/umbc-hackafe/wink-go"
)

func ExampleNewSession() {
	session, err := wink.NewSession(wink.Credentials{
		wink.FieldClientID:     "your-client-id",
		wink.FieldClientSecret: "your-client-secret",
		wink.FieldBaseURL:      wink.DefaultBaseURL,
		wink.FieldUsername:     "you@example.com",
		wink.FieldPassword:     "your-password",
	}, wink.WithTimeout(10*time.Second))
	if err != nil {
		log.Fatal(err)
	}

	devices, err := session.Devices(context.Background())
	if err != nil {
		log.Fatal(err)
	}
	for _, device := range devices {
		fmt.Printf("%s %s\n", device.Kind(), device.ID())
	}
}

func ExampleNewSessionFromStore() {
	store := wink.NewFileCredentialStore("credentials.json")
	session, err := wink.NewSessionFromStore(context.Background(), store)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(session.Credentials()[wink.FieldExpires])
}

func ExampleLoadConfig() {
	cfg, err := wink.LoadConfig("wink.yaml")
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	session, err := cfg.NewSession(ctx)
	if err != nil {
		log.Fatal(err)
	}

	hubs, err := session.Hubs(ctx)
	if err != nil {
		log.Fatal(err)
	}
	for _, hub := range hubs {
		fmt.Println(hub.FirmwareVersion(), hub.UpdateNeeded())
	}
}

func ExampleLightBulb_Toggle() {
	ctx := context.Background()
	session, err := wink.NewSessionFromStore(ctx, wink.NewFileCredentialStore("credentials.json"))
	if err != nil {
		log.Fatal(err)
	}

	bulbs, err := session.LightBulbs(ctx)
	if err != nil {
		log.Fatal(err)
	}
	for _, bulb := range bulbs {
		if err := bulb.Toggle(ctx); err != nil {
			log.Printf("%s: %v", bulb.Path(), err)
		}
	}
}

func ExampleDevice_Revert() {
	ctx := context.Background()
	session, err := wink.NewSessionFromStore(ctx, wink.NewFileCredentialStore("credentials.json"))
	if err != nil {
		log.Fatal(err)
	}

	strips, err := session.Powerstrips(ctx)
	if err != nil {
		log.Fatal(err)
	}
	for _, strip := range strips {
		for _, outlet := range strip.Outlets() {
			_ = outlet.SetPowered(ctx, false)
		}

		// Put the strip and its outlets back the way they were listed.
		result := strip.Revert(ctx)
		if err := result.Errors(); err != nil {
			log.Println(err)
		}
	}
}

func ExampleCloudClock_CreateAlarm() {
	ctx := context.Background()
	session, err := wink.NewSessionFromStore(ctx, wink.NewFileCredentialStore("credentials.json"))
	if err != nil {
		log.Fatal(err)
	}

	clocks, err := session.CloudClocks(ctx)
	if err != nil || len(clocks) == 0 {
		log.Fatal("no cloud clock")
	}

	alarm, err := clocks[0].CreateAlarm(ctx, "Wake up",
		"DTSTART;TZID=America/New_York:20140101T070000\nRRULE:FREQ=WEEKLY;BYDAY=MO,TU,WE,TH,FR", true)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(alarm.Path())
}

func ExampleNewLoggingSession() {
	logger, err := wink.NewLogger(os.Stderr, "debug")
	if err != nil {
		log.Fatal(err)
	}

	session, err := wink.NewLoggingSession(wink.Credentials{
		wink.FieldClientID:     "your-client-id",
		wink.FieldClientSecret: "your-client-secret",
		wink.FieldBaseURL:      wink.DefaultBaseURL,
		wink.FieldUserID:       "12345",
		wink.FieldPassword:     "your-password",
	}, logger)
	if err != nil {
		log.Fatal(err)
	}
	_, _ = session.Get(context.Background(), "/users/me")
}
