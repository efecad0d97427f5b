package wink

// Device kinds known to the catalog.
const (
	KindPowerstrip DeviceKind = "powerstrip"
	KindOutlet     DeviceKind = "outlet"
	KindEggtray    DeviceKind = "eggtray"
	KindCloudClock DeviceKind = "cloud_clock"
	KindDial       DeviceKind = "dial"
	KindPiggyBank  DeviceKind = "piggy_bank"
	KindSensorPod  DeviceKind = "sensor_pod"
	KindHub        DeviceKind = "hub"
	KindCamera     DeviceKind = "camera"
	KindGarageDoor DeviceKind = "garage_door"
	KindLightBulb  DeviceKind = "light_bulb"
)

// Creatable resource kinds.
const (
	ResourceTrigger              ResourceKind = "trigger"
	ResourceAlarm                ResourceKind = "alarm"
	ResourceScheduledOutletState ResourceKind = "scheduled_outlet_state"
)

// Fields shared by the zigbee/z-wave style devices that report through
// a hub.
var radioDeviceNonConfig = []string{
	"radio_type",
	"upc_code",
	"upc_id",
	"model_name",
	"lat_lng",
	"order",
	"triggers",
	"manufacturer_device_model",
	"manufacturer_device_id",
	"location",
	"locale",
	"device_manufacturer",
	"created_at",
	"unit",
	"hidden_at",
	"capabilities",
}

func withFields(base []string, extra ...string) []string {
	out := make([]string, 0, len(base)+len(extra))
	out = append(out, base...)
	return append(out, extra...)
}

var allDevicesResources = []ResourceKind{ResourceTrigger}

// deviceCatalog is the declaration order used for device discovery: a
// document is classified by the first kind whose id key it carries.
// Devices paired through a hub carry a hub_id, so hubs come after every
// other top-level kind. Sub-device kinds come last.
var deviceCatalog = []*DeviceSchema{
	{
		Kind: KindPowerstrip,
		NonConfigFields: []string{
			"powerstrip_id",
			"powerstrip_triggers",
			"outlets",
			"last_reading",
			"mac_address",
			"serial",
			"subscription",
			"triggers",
			"user_ids",
		},
		SubDevices: []DeviceKind{KindOutlet},
		Resources:  allDevicesResources,
		Sharable:   true,
	},
	{
		Kind: KindCloudClock,
		NonConfigFields: []string{
			"cloud_clock_id",
			"cloud_clock_triggers",
			"dials",
			"last_reading",
			"mac_address",
			"serial",
			"subscription",
			"triggers",
			"user_ids",
		},
		MutableFields: []Field{{"name", FieldString}},
		SubDevices:    []DeviceKind{KindDial},
		Resources:     []ResourceKind{ResourceTrigger, ResourceAlarm},
		Sharable:      true,
	},
	{
		Kind:            KindLightBulb,
		NonConfigFields: withFields(radioDeviceNonConfig, "gang_id"),
		MutableFields:   []Field{{"name", FieldString}, {"desired_state", FieldObject}},
		Resources:       allDevicesResources,
		Sharable:        true,
	},
	{
		Kind:            KindGarageDoor,
		NonConfigFields: withFields(radioDeviceNonConfig),
		MutableFields:   []Field{{"name", FieldString}, {"desired_state", FieldString}},
		Resources:       allDevicesResources,
		Sharable:        true,
	},
	{
		Kind:          KindCamera,
		MutableFields: []Field{{"name", FieldString}, {"desired_state", FieldString}},
		Resources:     allDevicesResources,
		Sharable:      true,
	},
	{Kind: KindEggtray, Resources: allDevicesResources, Sharable: true},
	{Kind: KindPiggyBank, Resources: allDevicesResources, Sharable: true},
	{Kind: KindSensorPod, Resources: allDevicesResources, Sharable: true},
	{
		Kind: KindHub,
		NonConfigFields: []string{
			"created_at",
			"device_manufacturer",
			"hidden_at",
			"lat_lng",
			"linked_service_id",
			"locale",
			"location",
			"manufacturer_device_id",
			"manufacturer_device_model",
			"model_name",
			"triggers",
			"unit",
			"upc_code",
			"upc_id",
		},
		MutableFields: []Field{{"name", FieldString}, {"desired_state", FieldObject}},
		Resources:     allDevicesResources,
		Sharable:      true,
	},
	{
		Kind:            KindOutlet,
		NonConfigFields: []string{"outlet_id", "outlet_index"},
		MutableFields: []Field{
			{"name", FieldString},
			{"icon_id", FieldString},
			{"powered", FieldBool},
		},
		Resources: []ResourceKind{ResourceTrigger, ResourceScheduledOutletState},
	},
	// The API serves dials at the root level even though they belong to
	// a cloud clock.
	{
		Kind:            KindDial,
		NonConfigFields: []string{"dial_id", "dial_index", "labels", "position"},
		MutableFields: []Field{
			{"name", FieldString},
			{"label", FieldString},
			{"channel_configuration", FieldObject},
			{"dial_configuration", FieldObject},
			{"brightness", FieldInt},
		},
		Resources: allDevicesResources,
	},
}

var resourceCatalog = []*ResourceSchema{
	{
		Kind:            ResourceTrigger,
		NonConfigFields: []string{"trigger_id"},
		MutableFields: []Field{
			{"name", FieldString},
			{"enabled", FieldBool},
			{"trigger_configuration", FieldObject},
			{"channel_configuration", FieldObject},
		},
	},
	{
		Kind:            ResourceAlarm,
		NonConfigFields: []string{"alarm_id"},
		MutableFields: []Field{
			{"name", FieldString},
			{"recurrence", FieldString},
			{"enabled", FieldBool},
		},
	},
	{
		Kind:            ResourceScheduledOutletState,
		NonConfigFields: []string{"scheduled_outlet_state_id"},
		MutableFields: []Field{
			{"name", FieldString},
			{"powered", FieldBool},
			{"enabled", FieldBool},
			{"recurrence", FieldString},
		},
	},
}
