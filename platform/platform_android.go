// SPDX-License-Identifier: Unlicense OR MIT

package platform

/*
#include <jni.h>
#include <stdlib.h>

static jint location_jni_GetEnv(JavaVM *vm, JNIEnv **env, jint version) {
	return (*vm)->GetEnv(vm, (void **)env, version);
}

static jint location_jni_AttachCurrentThread(JavaVM *vm, JNIEnv **p_env, void *thr_args) {
	return (*vm)->AttachCurrentThread(vm, p_env, thr_args);
}

static jint location_jni_DetachCurrentThread(JavaVM *vm) {
	return (*vm)->DetachCurrentThread(vm);
}

static jobject location_jni_NewGlobalRef(JNIEnv *env, jobject obj) {
	return (*env)->NewGlobalRef(env, obj);
}

static jthrowable location_jni_ExceptionOccurred(JNIEnv *env) {
	jthrowable exc = (*env)->ExceptionOccurred(env);
	if (exc != NULL) {
		(*env)->ExceptionClear(env);
	}
	return exc;
}

// location_jni_LoadClass loads a class through the class loader of ctx.
// FindClass cannot see application classes from threads not created by
// the JVM.
static jclass location_jni_LoadClass(JNIEnv *env, jobject ctx, const char *name) {
	jclass ctxClass = (*env)->GetObjectClass(env, ctx);
	jmethodID getLoader = (*env)->GetMethodID(env, ctxClass, "getClassLoader", "()Ljava/lang/ClassLoader;");
	jobject loader = (*env)->CallObjectMethod(env, ctx, getLoader);
	jclass loaderClass = (*env)->GetObjectClass(env, loader);
	jmethodID loadClass = (*env)->GetMethodID(env, loaderClass, "loadClass", "(Ljava/lang/String;)Ljava/lang/Class;");
	jstring jname = (*env)->NewStringUTF(env, name);
	jclass cls = (jclass)(*env)->CallObjectMethod(env, loader, loadClass, jname);
	(*env)->DeleteLocalRef(env, jname);
	return cls;
}

static jmethodID location_jni_GetStaticMethodID(JNIEnv *env, jclass clazz, const char *name, const char *sig) {
	return (*env)->GetStaticMethodID(env, clazz, name, sig);
}

static jboolean location_jni_HasPermission(JNIEnv *env, jclass clazz, jmethodID m, jobject ctx, const char *perm) {
	jstring jperm = (*env)->NewStringUTF(env, perm);
	jboolean ok = (*env)->CallStaticBooleanMethod(env, clazz, m, ctx, jperm);
	(*env)->DeleteLocalRef(env, jperm);
	return ok;
}

static void location_jni_RequestPermission(JNIEnv *env, jclass clazz, jmethodID m, jobject view, const char *perm, jlong handle) {
	jstring jperm = (*env)->NewStringUTF(env, perm);
	(*env)->CallStaticVoidMethod(env, clazz, m, view, jperm, handle);
	(*env)->DeleteLocalRef(env, jperm);
}

static void location_jni_LastLocation(JNIEnv *env, jclass clazz, jmethodID m, jobject ctx, jlong handle) {
	(*env)->CallStaticVoidMethod(env, clazz, m, ctx, handle);
}

static const char *location_jni_GetStringUTFChars(JNIEnv *env, jstring str) {
	return (*env)->GetStringUTFChars(env, str, NULL);
}

static void location_jni_ReleaseStringUTFChars(JNIEnv *env, jstring str, const char *chars) {
	(*env)->ReleaseStringUTFChars(env, str, chars);
}
*/
import "C"

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"
	"unsafe"

	"gioui.org/app"
	"gioui.org/io/event"

	"gioui.org/example/location/location"
	"gioui.org/example/location/permission"
)

const helperClass = "org/gioui/example/location/LocationHelper"

type reply struct {
	granted bool
	fix     location.Fix
	ok      bool
	err     error
}

var (
	pendingMu sync.Mutex
	pending   = make(map[C.jlong]chan reply)
	nextID    C.jlong
)

func register() (C.jlong, chan reply) {
	pendingMu.Lock()
	defer pendingMu.Unlock()
	nextID++
	ch := make(chan reply, 1)
	pending[nextID] = ch
	return nextID, ch
}

func resolve(id C.jlong, r reply) {
	pendingMu.Lock()
	ch, ok := pending[id]
	delete(pending, id)
	pendingMu.Unlock()
	if ok {
		ch <- r
	}
}

func cancel(id C.jlong) {
	pendingMu.Lock()
	delete(pending, id)
	pendingMu.Unlock()
}

type android struct {
	mu   sync.Mutex
	view C.jobject

	once   sync.Once
	class  C.jclass
	loaded error

	mHasPermission     C.jmethodID
	mRequestPermission C.jmethodID
	mLastLocation      C.jmethodID
}

func newNative() (Native, error) {
	return new(android), nil
}

func (a *android) Event(e event.Event) {
	ve, ok := e.(app.AndroidViewEvent)
	if !ok {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	// The view is a global reference owned by the window.
	a.view = C.jobject(ve.View)
}

func (a *android) currentView() C.jobject {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.view
}

func appContext() C.jobject {
	return C.jobject(app.AppContext())
}

func (a *android) load(env *C.JNIEnv) error {
	a.once.Do(func() {
		name := C.CString(helperClass)
		defer C.free(unsafe.Pointer(name))
		cls := C.location_jni_LoadClass(env, appContext(), name)
		if err := exception(env); err != nil {
			a.loaded = fmt.Errorf("platform: failed to load %s: %w", helperClass, err)
			return
		}
		a.class = C.jclass(C.location_jni_NewGlobalRef(env, C.jobject(cls)))
		a.mHasPermission = getStaticMethodID(env, a.class, "hasPermission", "(Landroid/content/Context;Ljava/lang/String;)Z")
		a.mRequestPermission = getStaticMethodID(env, a.class, "requestPermission", "(Landroid/view/View;Ljava/lang/String;J)V")
		a.mLastLocation = getStaticMethodID(env, a.class, "lastLocation", "(Landroid/content/Context;J)V")
		a.loaded = exception(env)
	})
	return a.loaded
}

func (a *android) Granted(p permission.Permission) bool {
	var granted bool
	err := runInJVM(func(env *C.JNIEnv) error {
		if err := a.load(env); err != nil {
			return err
		}
		perm := C.CString(string(p))
		defer C.free(unsafe.Pointer(perm))
		granted = C.location_jni_HasPermission(env, a.class, a.mHasPermission, appContext(), perm) == C.JNI_TRUE
		return exception(env)
	})
	return err == nil && granted
}

func (a *android) Request(ctx context.Context, p permission.Permission) (bool, error) {
	view := a.currentView()
	if view == 0 {
		return false, errors.New("platform: no view to attach the permission dialog to")
	}
	id, ch := register()
	err := runInJVM(func(env *C.JNIEnv) error {
		if err := a.load(env); err != nil {
			return err
		}
		perm := C.CString(string(p))
		defer C.free(unsafe.Pointer(perm))
		C.location_jni_RequestPermission(env, a.class, a.mRequestPermission, view, perm, id)
		return exception(env)
	})
	if err != nil {
		cancel(id)
		return false, err
	}
	select {
	case r := <-ch:
		return r.granted, r.err
	case <-ctx.Done():
		cancel(id)
		return false, ctx.Err()
	}
}

func (a *android) LastKnown(ctx context.Context) (location.Fix, error) {
	id, ch := register()
	err := runInJVM(func(env *C.JNIEnv) error {
		if err := a.load(env); err != nil {
			return err
		}
		C.location_jni_LastLocation(env, a.class, a.mLastLocation, appContext(), id)
		return exception(env)
	})
	if err != nil {
		cancel(id)
		return location.Fix{}, err
	}
	select {
	case r := <-ch:
		switch {
		case r.err != nil:
			return location.Fix{}, r.err
		case !r.ok:
			return location.Fix{}, location.ErrNoLocation
		}
		return r.fix, nil
	case <-ctx.Done():
		cancel(id)
		return location.Fix{}, ctx.Err()
	}
}

//export Java_org_gioui_example_location_LocationHelper_onPermissionResult
func Java_org_gioui_example_location_LocationHelper_onPermissionResult(env *C.JNIEnv, class C.jclass, handle C.jlong, granted C.jboolean) {
	resolve(handle, reply{granted: granted == C.JNI_TRUE})
}

//export Java_org_gioui_example_location_LocationHelper_onLocationResult
func Java_org_gioui_example_location_LocationHelper_onLocationResult(env *C.JNIEnv, class C.jclass, handle C.jlong, ok C.jboolean, lat, lon, accuracy C.jdouble, millis C.jlong) {
	r := reply{ok: ok == C.JNI_TRUE}
	if r.ok {
		r.fix = location.Fix{
			Coordinate: location.Coordinate{Latitude: float64(lat), Longitude: float64(lon)},
			Accuracy:   float64(accuracy),
			Time:       time.UnixMilli(int64(millis)),
		}
	}
	resolve(handle, r)
}

//export Java_org_gioui_example_location_LocationHelper_onLocationError
func Java_org_gioui_example_location_LocationHelper_onLocationError(env *C.JNIEnv, class C.jclass, handle C.jlong, msg C.jstring) {
	resolve(handle, reply{err: fmt.Errorf("platform: location manager: %s", goString(env, msg))})
}

func getStaticMethodID(env *C.JNIEnv, class C.jclass, method, sig string) C.jmethodID {
	m := C.CString(method)
	defer C.free(unsafe.Pointer(m))
	s := C.CString(sig)
	defer C.free(unsafe.Pointer(s))
	return C.location_jni_GetStaticMethodID(env, class, m, s)
}

func goString(env *C.JNIEnv, str C.jstring) string {
	if str == 0 {
		return ""
	}
	chars := C.location_jni_GetStringUTFChars(env, str)
	defer C.location_jni_ReleaseStringUTFChars(env, str, chars)
	return C.GoString(chars)
}

func exception(env *C.JNIEnv) error {
	if C.location_jni_ExceptionOccurred(env) != 0 {
		return errors.New("platform: Java exception")
	}
	return nil
}

func runInJVM(f func(env *C.JNIEnv) error) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	vm := (*C.JavaVM)(unsafe.Pointer(app.JavaVM()))
	var env *C.JNIEnv
	if res := C.location_jni_GetEnv(vm, &env, C.JNI_VERSION_1_6); res != C.JNI_OK {
		if res != C.JNI_EDETACHED {
			return fmt.Errorf("platform: JNI GetEnv failed with error %d", res)
		}
		if C.location_jni_AttachCurrentThread(vm, &env, nil) != C.JNI_OK {
			return errors.New("platform: AttachCurrentThread failed")
		}
		defer C.location_jni_DetachCurrentThread(vm)
	}
	return f(env)
}
