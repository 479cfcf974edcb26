package bluez

import (
	"fmt"
	"sort"
	"strings"

	"github.com/godbus/dbus/v5"

	"github.com/altoke/printship/internal/domain"
)

const (
	busName = "org.bluez"

	ifaceDevice         = "org.bluez.Device1"
	ifaceGattService    = "org.bluez.GattService1"
	ifaceCharacteristic = "org.bluez.GattCharacteristic1"
	ifaceObjectManager  = "org.freedesktop.DBus.ObjectManager"

	// PrinterServiceUUID is the GATT service exposed by common BLE thermal printers.
	PrinterServiceUUID = "000018f0-0000-1000-8000-00805f9b34fb"

	// PrinterCharacteristicUUID is the writable characteristic receiving ESC/POS data.
	PrinterCharacteristicUUID = "00002af1-0000-1000-8000-00805f9b34fb"
)

// managedObjects is the reply of ObjectManager.GetManagedObjects.
type managedObjects map[dbus.ObjectPath]map[string]map[string]dbus.Variant

// Device is a Bluetooth device known to BlueZ.
type Device struct {
	Path      dbus.ObjectPath
	Address   string
	Name      string
	Connected bool
	Printer   bool
}

func (o managedObjects) devices(serviceUUID string) []Device {
	var out []Device
	for path, ifaces := range o {
		props, ok := ifaces[ifaceDevice]
		if !ok {
			continue
		}
		d := Device{Path: path}
		d.Address, _ = variantString(props["Address"])
		if name, ok := variantString(props["Alias"]); ok && name != "" {
			d.Name = name
		} else {
			d.Name, _ = variantString(props["Name"])
		}
		if v, ok := props["Connected"]; ok {
			d.Connected, _ = v.Value().(bool)
		}
		if v, ok := props["UUIDs"]; ok {
			uuids, _ := v.Value().([]string)
			for _, u := range uuids {
				if strings.EqualFold(u, serviceUUID) {
					d.Printer = true
					break
				}
			}
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// findDevice picks the device matching filter by address or name. An empty
// filter selects the first device advertising serviceUUID.
func (o managedObjects) findDevice(filter, serviceUUID string) (Device, error) {
	for _, d := range o.devices(serviceUUID) {
		if filter == "" {
			if d.Printer {
				return d, nil
			}
			continue
		}
		if strings.EqualFold(d.Address, filter) || d.Name == filter {
			return d, nil
		}
	}
	if filter == "" {
		return Device{}, fmt.Errorf("%w: no device advertises service %s", domain.ErrDeviceNotFound, serviceUUID)
	}
	return Device{}, fmt.Errorf("%w: %q", domain.ErrDeviceNotFound, filter)
}

// findCharacteristic returns the path of charUUID inside serviceUUID on device.
func (o managedObjects) findCharacteristic(device dbus.ObjectPath, serviceUUID, charUUID string) (dbus.ObjectPath, bool) {
	services := make(map[dbus.ObjectPath]bool)
	for path, ifaces := range o {
		props, ok := ifaces[ifaceGattService]
		if !ok {
			continue
		}
		owner, _ := props["Device"].Value().(dbus.ObjectPath)
		uuid, _ := variantString(props["UUID"])
		if owner == device && strings.EqualFold(uuid, serviceUUID) {
			services[path] = true
		}
	}
	if len(services) == 0 {
		return "", false
	}

	var matches []dbus.ObjectPath
	for path, ifaces := range o {
		props, ok := ifaces[ifaceCharacteristic]
		if !ok {
			continue
		}
		service, _ := props["Service"].Value().(dbus.ObjectPath)
		uuid, _ := variantString(props["UUID"])
		if services[service] && strings.EqualFold(uuid, charUUID) {
			matches = append(matches, path)
		}
	}
	if len(matches) == 0 {
		return "", false
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i] < matches[j] })
	return matches[0], true
}

func variantString(v dbus.Variant) (string, bool) {
	s, ok := v.Value().(string)
	return s, ok
}
